package display

import (
	"fmt"
	"io"

	"github.com/backmassage/hevcshrink/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` _                    _          _       _
| |__   _____   _____| |__  _ __(_)_ __ | | __
| '_ \ / _ \ \ / / __| '_ \| '__| | '_ \| |/ /
| | | |  __/\ V / (__\__ \ | | | | | | |   <
|_| |_|\___| \_/ \___|___/_| |_|_|_| |_|_|\_\
`)
	if term.Enabled() {
		fmt.Fprintln(w, term.NC)
	}
}
