// Package naming builds the scratch and temporary file paths used while
// encoding and replacing files.
package naming
