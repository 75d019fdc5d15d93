// Package fe describes finite-element engine input as an ordered program of
// commands, independent of the engine that executes it.
package fe

import (
	"context"
	"fmt"
)

// Command is one engine command. Body holds nested commands for block
// commands such as a fiber section or a load pattern.
type Command struct {
	Name string
	Args []any
	Body []Command
}

// Cmd builds a command.
func Cmd(name string, args ...any) Command {
	return Command{Name: name, Args: args}
}

// StepKind tells the engine what to do with a step's result.
type StepKind int

const (
	// Exec runs the command and ignores its result.
	Exec StepKind = iota
	// Probe runs the command and reports its result under Label.
	Probe
	// Check runs the command and aborts the run unless it returns 0.
	Check
)

func (k StepKind) String() string {
	switch k {
	case Exec:
		return "exec"
	case Probe:
		return "probe"
	case Check:
		return "check"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is a command with its kind.
type Step struct {
	Kind  StepKind
	Label string
	Cmd   Command
}

// Program is an ordered list of steps.
type Program struct {
	Steps []Step
}

// Exec appends a plain command.
func (p *Program) Exec(name string, args ...any) {
	p.Steps = append(p.Steps, Step{Kind: Exec, Cmd: Cmd(name, args...)})
}

// Block appends a command with a nested body, which may be empty.
func (p *Program) Block(name string, args []any, body ...Command) {
	if body == nil {
		body = []Command{}
	}
	p.Steps = append(p.Steps, Step{Kind: Exec, Cmd: Command{Name: name, Args: args, Body: body}})
}

// Probe appends a command whose numeric result is reported under label.
func (p *Program) Probe(label, name string, args ...any) {
	p.Steps = append(p.Steps, Step{Kind: Probe, Label: label, Cmd: Cmd(name, args...)})
}

// Check appends a command that must return 0.
func (p *Program) Check(name string, args ...any) {
	p.Steps = append(p.Steps, Step{Kind: Check, Cmd: Cmd(name, args...)})
}

// Append copies the steps of q onto p.
func (p *Program) Append(q *Program) {
	p.Steps = append(p.Steps, q.Steps...)
}

// Count returns how many top-level steps run the named command.
func (p *Program) Count(name string) int {
	n := 0
	for _, s := range p.Steps {
		if s.Cmd.Name == name {
			n++
		}
	}
	return n
}

// Find returns the top-level commands with the given name in order.
func (p *Program) Find(name string) []Command {
	var out []Command
	for _, s := range p.Steps {
		if s.Cmd.Name == name {
			out = append(out, s.Cmd)
		}
	}
	return out
}

// Engine executes a program and returns its probes and output directory.
type Engine interface {
	Run(ctx context.Context, p *Program) (*Output, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, p *Program) (*Output, error)

// Run calls f(ctx, p).
func (f EngineFunc) Run(ctx context.Context, p *Program) (*Output, error) {
	return f(ctx, p)
}
