package params

import (
	"fmt"
	"strings"
)

// ParseError reports a cell value that does not match its declared type.
type ParseError struct {
	Sheet string
	Row   int
	Key   string
	Type  Type
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Sheet != "" {
		fmt.Fprintf(&b, "sheet %s ", e.Sheet)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d ", e.Row)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, "key %q: ", e.Key)
	}
	t := string(e.Type)
	if t == "" {
		t = "auto"
	}
	fmt.Fprintf(&b, "cannot parse %q as %s", e.Raw, t)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingParameterError lists every required key that has no value.
type MissingParameterError struct {
	Keys []string
}

func (e *MissingParameterError) Error() string {
	return "missing required parameters: " + strings.Join(e.Keys, ", ")
}

// ValueError reports a parameter that is present but holds the wrong shape.
type ValueError struct {
	Key  string
	Want string
	Got  any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("parameter %s: want %s, got %T (%v)", e.Key, e.Want, e.Got, e.Got)
}
