package main

import (
	"fmt"
	"io"
)

// keySource yields raw key bytes. Next returns ok=false when the poll
// window elapsed with nothing to read.
type keySource interface {
	Next() (b byte, ok bool, err error)
}

// isQuit reports whether b is the quit key ('q', either case).
func isQuit(b byte) bool {
	return b == 'q' || b == 'Q'
}

// echoKeys polls src until the quit key or a read error, echoing each key
// and printing a heartbeat dot per empty poll window. Output uses \r\n
// line endings since the terminal is in raw mode.
func echoKeys(src keySource, out io.Writer) error {
	for {
		b, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprint(out, ".")
			continue
		}

		fmt.Fprintf(out, "\rKey pressed: %q", rune(b))
		if isQuit(b) {
			fmt.Fprint(out, "\r\nQuitting...\r\n")
			return nil
		}
	}
}
