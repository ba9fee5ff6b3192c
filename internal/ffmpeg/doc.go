// Package ffmpeg builds and runs HEVC re-encode commands.
//
// An [Option] is one encoder invocation (hardware or software). A [Session]
// walks the ordered ladder of options until one succeeds and then locks that
// option in for the rest of the run. Options whose stderr shows the encoder
// cannot work on this machine are dropped from later attempts.
//
// Files:
//   - builder.go: Option, ladder construction, argument skeleton
//   - executor.go: process execution with stderr capture
//   - errors.go: stderr classification and sentinel errors
//   - session.go: sticky codec selection
//   - progress.go: -progress parsing and the terminal progress bar
package ffmpeg
