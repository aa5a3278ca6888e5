// Package terminal provides utilities for terminal operations such as detecting a tty,
// measuring its width and clearing previously printed text.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size cannot be read.
const DefaultWidth = 80

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal behind f, or DefaultWidth.
func Width(f *os.File) int {
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return DefaultWidth
}

// LinesFor returns how many terminal rows text of textLength characters occupies at width.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	lines := (textLength + width - 1) / width
	return max(lines, 1)
}

// ClearPreviousLines clears text from the terminal that was previously printed.
// It calculates how many lines were used by the provided text based on the current
// terminal width, then moves up and clears each line.
//
// This is useful for cleaning up prompts after the user has answered them, so a typed
// connection string does not stay on screen.
//
// Parameters:
//   - w: where the escape sequences are written (the terminal the prompt was printed on)
//   - textLength: The total number of characters in the text to clear (prompt + user input)
//   - width: The terminal width, usually from Width
//
// One extra line is cleared for the newline the user typed with Enter.
func ClearPreviousLines(w io.Writer, textLength, width int) {
	linesToClear := LinesFor(textLength, width) + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K") // Move to start and clear entire line
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A") // Move up one line (don't move up on last iteration)
		}
	}
}
