package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Result is the outcome of one conversation turn.
type Result struct {
	// Handled is false when the user had no active flow and the event was
	// not consumed; the caller decides what to do with the raw event then.
	Handled bool
	// Denied is set when an admin-only flow was refused.
	Denied bool
	// Session is the state snapshot after the turn; zero when cleared.
	Session Session
	Output  Output
}

// Engine drives registered flows: it validates each turn against the active
// step, accumulates collected fields, and computes the next step or terminal
// action. Turns for the same user are strictly serialized.
type Engine struct {
	flows      map[FlowName]*Flow
	states     StateStore
	operatorID int64
	log        *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New constructs an engine over the given state store. operatorID is the
// single identity allowed to start admin-only flows.
func New(states StateStore, operatorID int64, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		flows:      make(map[FlowName]*Flow),
		states:     states,
		operatorID: operatorID,
		log:        log,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// Register adds a flow definition to the engine.
func (e *Engine) Register(f *Flow) error {
	if err := f.index(); err != nil {
		return err
	}
	if _, exists := e.flows[f.Name]; exists {
		return fmt.Errorf("dialog: flow %s registered twice", f.Name)
	}
	e.flows[f.Name] = f
	return nil
}

// IsOperator reports whether the identity is the configured operator.
func (e *Engine) IsOperator(userID int64) bool {
	return userID == e.operatorID
}

// Active reports whether the user currently has an active flow.
func (e *Engine) Active(userID int64) bool {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	_, ok := e.states.Get(userID)
	return ok
}

// userLock returns the per-user mutex that serializes turns.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// Start begins the named flow for a user, replacing any prior conversation
// state wholesale. seed carries fields supplied by the trigger itself
// (e.g. the target item of an order button).
func (e *Engine) Start(ctx context.Context, userID int64, name FlowName, seed Fields) (Result, error) {
	flow, ok := e.flows[name]
	if !ok {
		return Result{}, fmt.Errorf("dialog: unknown flow %s", name)
	}
	if flow.AdminOnly && !e.IsOperator(userID) {
		e.log.Warn("flow start denied",
			slog.String("event", "access.denied"),
			slog.String("flow", string(name)),
			slog.Int64("user_id", userID),
		)
		return Result{Handled: true, Denied: true, Output: Prompt("You do not have access to this.")}, nil
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	fields := seed.Clone()
	if fields == nil {
		fields = Fields{}
	}
	entry, _ := flow.step(flow.Entry)
	out, err := entry.Prompt(ctx, fields)
	if err != nil {
		var abort *FlowAbort
		if errors.As(err, &abort) {
			e.states.Clear(userID)
			return Result{Handled: true, Output: Output{Text: abort.Message, Cancelled: true}}, nil
		}
		return Result{}, fmt.Errorf("dialog: prompt %s/%s: %w", name, flow.Entry, err)
	}

	session := Session{Flow: name, Step: flow.Entry, Fields: fields}
	e.states.Put(userID, session)
	e.log.Info("flow started",
		slog.String("event", "flow.start"),
		slog.String("flow", string(name)),
		slog.Int64("user_id", userID),
	)
	return Result{Handled: true, Session: session, Output: out}, nil
}

// Advance applies one inbound event to the user's active flow. With no
// active flow the event is reported unhandled and nothing changes. Invalid
// input re-prompts and leaves the state byte-for-byte unchanged.
func (e *Engine) Advance(ctx context.Context, userID int64, in Input) (Result, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, ok := e.states.Get(userID)
	if !ok {
		return Result{}, nil
	}

	flow, ok := e.flows[session.Flow]
	if !ok {
		// State written by an older build; drop it rather than wedge the user.
		e.states.Clear(userID)
		return Result{}, fmt.Errorf("dialog: state references unknown flow %s", session.Flow)
	}

	if isCancel(in) {
		e.states.Clear(userID)
		text := flow.CancelText
		if text == "" {
			text = "Cancelled."
		}
		e.log.Info("flow cancelled",
			slog.String("event", "flow.cancel"),
			slog.String("flow", string(session.Flow)),
			slog.Int64("user_id", userID),
		)
		return Result{Handled: true, Output: Output{Text: text, Cancelled: true}}, nil
	}

	step, ok := flow.step(session.Step)
	if !ok {
		e.states.Clear(userID)
		return Result{}, fmt.Errorf("dialog: state references unknown step %s/%s", session.Flow, session.Step)
	}

	if !step.accepts(in.Kind) {
		out, err := e.reprompt(ctx, step, session.Fields, "")
		if err != nil {
			return Result{}, err
		}
		e.logStep(session, in, "invalid_kind")
		return Result{Handled: true, Session: session, Output: out}, nil
	}

	value, err := e.validate(ctx, step, in, session.Fields)
	if err != nil {
		var invalid *InvalidInput
		if errors.As(err, &invalid) {
			out, perr := e.reprompt(ctx, step, session.Fields, invalid.Message)
			if perr != nil {
				return Result{}, perr
			}
			e.logStep(session, in, "invalid")
			return Result{Handled: true, Session: session, Output: out}, nil
		}
		var abort *FlowAbort
		if errors.As(err, &abort) {
			e.states.Clear(userID)
			e.logStep(session, in, "aborted")
			return Result{Handled: true, Output: Output{Text: abort.Message, Cancelled: true}}, nil
		}
		// Infrastructure failure: surface it, leave the state untouched so
		// the user can repeat the turn.
		return Result{}, fmt.Errorf("dialog: validate %s/%s: %w", session.Flow, session.Step, err)
	}

	fields := session.Fields.Clone()
	if fields == nil {
		fields = Fields{}
	}
	if step.Field != "" {
		fields[step.Field] = value
	}

	next := StepEnd
	if step.Next != nil {
		next = step.Next(fields)
	}

	if next == StepEnd {
		return e.complete(ctx, userID, flow, session, fields)
	}

	nextStep, ok := flow.step(next)
	if !ok {
		return Result{}, fmt.Errorf("dialog: flow %s transitions to unknown step %s", session.Flow, next)
	}
	out, err := nextStep.Prompt(ctx, fields)
	if err != nil {
		var abort *FlowAbort
		if errors.As(err, &abort) {
			e.states.Clear(userID)
			return Result{Handled: true, Output: Output{Text: abort.Message, Cancelled: true}}, nil
		}
		return Result{}, fmt.Errorf("dialog: prompt %s/%s: %w", session.Flow, next, err)
	}

	updated := Session{Flow: session.Flow, Step: next, Fields: fields}
	e.states.Put(userID, updated)
	e.logStep(updated, in, "ok")
	return Result{Handled: true, Session: updated, Output: out}, nil
}

// Cancel clears the user's conversation state explicitly (e.g. /cancel
// outside a step handler). Reports Handled=false when nothing was active.
func (e *Engine) Cancel(userID int64) Result {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, ok := e.states.Get(userID)
	if !ok {
		return Result{}
	}
	e.states.Clear(userID)
	text := "Cancelled."
	if flow, ok := e.flows[session.Flow]; ok && flow.CancelText != "" {
		text = flow.CancelText
	}
	return Result{Handled: true, Output: Output{Text: text, Cancelled: true}}
}

func (e *Engine) validate(ctx context.Context, step *Step, in Input, f Fields) (any, error) {
	if step.Validate != nil {
		return step.Validate(ctx, in, f)
	}
	switch in.Kind {
	case KindButton:
		return in.Token, nil
	case KindPhoto:
		return in.PhotoID, nil
	default:
		return in.Text, nil
	}
}

// reprompt re-renders the step prompt, overriding the text when the
// validator produced a more specific message. The session is not touched.
func (e *Engine) reprompt(ctx context.Context, step *Step, f Fields, text string) (Output, error) {
	out, err := step.Prompt(ctx, f)
	if err != nil {
		var abort *FlowAbort
		if errors.As(err, &abort) {
			return Output{Text: abort.Message}, nil
		}
		return Output{}, fmt.Errorf("dialog: reprompt %s: %w", step.Name, err)
	}
	if text != "" {
		out.Text = text
	}
	return out, nil
}

func (e *Engine) complete(ctx context.Context, userID int64, flow *Flow, session Session, fields Fields) (Result, error) {
	if flow.Complete == nil {
		return Result{}, fmt.Errorf("dialog: flow %s reached terminal step without a terminal action", flow.Name)
	}
	out, err := flow.Complete(ctx, userID, fields)
	if err != nil {
		var abort *FlowAbort
		if errors.As(err, &abort) {
			e.states.Clear(userID)
			e.logStep(session, Input{}, "aborted")
			return Result{Handled: true, Output: Output{Text: abort.Message, Cancelled: true}}, nil
		}
		// Store failure: keep the state so the confirming turn can be retried.
		return Result{}, fmt.Errorf("dialog: complete %s: %w", flow.Name, err)
	}
	e.states.Clear(userID)
	out.Done = true
	e.log.Info("flow completed",
		slog.String("event", "flow.complete"),
		slog.String("flow", string(flow.Name)),
		slog.Int64("user_id", userID),
	)
	return Result{Handled: true, Output: out}, nil
}

func (e *Engine) logStep(session Session, in Input, status string) {
	e.log.Debug("step handled",
		slog.String("event", "step"),
		slog.String("status", status),
		slog.String("flow", string(session.Flow)),
		slog.String("step", string(session.Step)),
		slog.String("input", in.Kind.String()),
	)
}
