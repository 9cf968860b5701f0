package dialog

import (
	"context"
	"errors"
	"fmt"
)

// StepEnd is the transition target that completes a flow.
const StepEnd StepName = ""

// Validator checks a turn's input against a step's expectations and returns
// the value to record. It reports recoverable problems as *InvalidInput
// (re-prompt, state unchanged) and unrecoverable ones as *FlowAbort
// (state cleared, flow over).
type Validator func(ctx context.Context, in Input, f Fields) (any, error)

// PromptFunc renders the ask for a step given the fields collected so far.
type PromptFunc func(ctx context.Context, f Fields) (Output, error)

// CompleteFunc is a flow's terminal action: it performs the durable store
// mutation and produces the final output (possibly with an operator Notice).
type CompleteFunc func(ctx context.Context, userID int64, f Fields) (Output, error)

// Step is one declarative row of a flow table.
type Step struct {
	Name StepName
	// Accept lists the input kinds this step consumes. Any other kind is a
	// validation failure and re-prompts without consuming the turn.
	Accept []InputKind
	// Validate checks the input; nil accepts the raw text/token verbatim.
	Validate Validator
	// Field names the collected value written on success; empty discards it.
	Field string
	// Next computes the success transition, possibly branching on fields
	// collected earlier. Returning StepEnd triggers the flow's Complete.
	Next func(f Fields) StepName
	// Prompt renders the step's ask; it doubles as the re-prompt skeleton
	// (the re-prompt keeps the options but replaces the text).
	Prompt PromptFunc
}

func (s *Step) accepts(kind InputKind) bool {
	for _, k := range s.Accept {
		if k == kind {
			return true
		}
	}
	return false
}

// Flow is a declarative multi-step conversation definition.
type Flow struct {
	Name  FlowName
	Entry StepName
	Steps []*Step
	// AdminOnly flows start only for the configured operator identity.
	AdminOnly bool
	// Complete runs the terminal action after the last step validates.
	Complete CompleteFunc
	// CancelText is shown when the user cancels mid-flow.
	CancelText string

	byName map[StepName]*Step
}

func (f *Flow) step(name StepName) (*Step, bool) {
	s, ok := f.byName[name]
	return s, ok
}

func (f *Flow) index() error {
	if f.Name == "" {
		return errors.New("dialog: flow without a name")
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("dialog: flow %s has no steps", f.Name)
	}
	f.byName = make(map[StepName]*Step, len(f.Steps))
	for _, s := range f.Steps {
		if s.Name == StepEnd {
			return fmt.Errorf("dialog: flow %s has an unnamed step", f.Name)
		}
		if _, dup := f.byName[s.Name]; dup {
			return fmt.Errorf("dialog: flow %s declares step %s twice", f.Name, s.Name)
		}
		if s.Prompt == nil {
			return fmt.Errorf("dialog: flow %s step %s has no prompt", f.Name, s.Name)
		}
		if len(s.Accept) == 0 {
			return fmt.Errorf("dialog: flow %s step %s accepts nothing", f.Name, s.Name)
		}
		f.byName[s.Name] = s
	}
	if _, ok := f.byName[f.Entry]; !ok {
		return fmt.Errorf("dialog: flow %s entry step %s not declared", f.Name, f.Entry)
	}
	return nil
}

// InvalidInput is a recoverable validation failure: the engine re-prompts
// and leaves the session untouched.
type InvalidInput struct {
	Message string
}

func (e *InvalidInput) Error() string { return e.Message }

// Invalid builds an InvalidInput with a formatted message.
func Invalid(format string, args ...any) error {
	return &InvalidInput{Message: fmt.Sprintf(format, args...)}
}

// FlowAbort ends the flow early: the engine clears the session and shows
// the message. Used for duplicate names and records that vanished mid-flow.
type FlowAbort struct {
	Message string
}

func (e *FlowAbort) Error() string { return e.Message }

// Abort builds a FlowAbort with a formatted message.
func Abort(format string, args ...any) error {
	return &FlowAbort{Message: fmt.Sprintf(format, args...)}
}
