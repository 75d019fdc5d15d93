// Package opensees runs engine programs through the OpenSees Tcl
// interpreter.
package opensees

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexiusacademia/bridgepsci/internal/fe"
)

// Script file names inside the work directory.
const (
	ScriptFile = "script.tcl"
	ProbeFile  = "probes.out"
	doneLabel  = "__done"
)

// Render writes p as an OpenSees Tcl script. Probe results go to ProbeFile,
// one "label values..." line each. A failing checked step closes the probe
// file and exits with status 2.
func Render(w io.Writer, p *fe.Program) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "set __probe [open %q w]\n", ProbeFile)
	for _, s := range p.Steps {
		switch s.Kind {
		case fe.Exec:
			writeCommand(bw, s.Cmd, "")
		case fe.Probe:
			if s.Label == "" || strings.ContainsAny(s.Label, " \t\n\"[]{}$\\") {
				return fmt.Errorf("invalid probe label %q", s.Label)
			}
			fmt.Fprintf(bw, "puts $__probe \"%s [%s]\"\n", s.Label, line(s.Cmd))
		case fe.Check:
			fmt.Fprintf(bw, "if {[%s] != 0} {\n", line(s.Cmd))
			fmt.Fprintf(bw, "\tputs stderr \"bridgepsci: %s failed\"\n", s.Cmd.Name)
			bw.WriteString("\tclose $__probe\n\texit 2\n}\n")
		default:
			return fmt.Errorf("unknown step kind %v", s.Kind)
		}
	}
	fmt.Fprintf(bw, "puts $__probe \"%s 1\"\n", doneLabel)
	bw.WriteString("wipe\nclose $__probe\n")
	return bw.Flush()
}

func writeCommand(w *bufio.Writer, c fe.Command, indent string) {
	w.WriteString(indent)
	w.WriteString(line(c))
	if c.Body == nil {
		w.WriteByte('\n')
		return
	}
	w.WriteString(" {\n")
	for _, b := range c.Body {
		writeCommand(w, b, indent+"\t")
	}
	w.WriteString(indent)
	w.WriteString("}\n")
}

func line(c fe.Command) string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(word(a))
	}
	return b.String()
}

// word formats one argument as a Tcl word. Slices become braced lists.
func word(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		if t == "" || strings.ContainsAny(t, " \t\n;\"[]$\\") {
			return "{" + t + "}"
		}
		return t
	case []float64:
		parts := make([]string, len(t))
		for i, x := range t {
			parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		return "{" + strings.Join(parts, " ") + "}"
	case []int:
		parts := make([]string, len(t))
		for i, x := range t {
			parts[i] = strconv.Itoa(x)
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	return fmt.Sprint(v)
}
