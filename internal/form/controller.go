// Package form implements the sign-up form's state controller.
//
// A Controller owns the field values a user typed, runs the shared
// validator before anything leaves the form, hands valid input to a
// Submitter, and turns the returned result into visible state:
//
//	idle → validating → submitting → success | failed → idle
//	          └──────→ failed (local validation)
//
// Transitions only happen through Submit, the result arriving inside
// Submit, and Reset.
package form

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/validation"
)

// State is a step in the form lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// MsgCheckForm is shown when local validation stops a submission or the
// server fails without a message of its own.
const MsgCheckForm = "Please check the form for errors."

var (
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("form: submission in progress")
	// ErrUnknownField is returned by Set for keys outside the form.
	ErrUnknownField = errors.New("form: unknown field")
)

var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateSubmitting, StateFailed},
	StateSubmitting: {StateSuccess, StateFailed},
	StateSuccess:    {StateValidating, StateIdle},
	StateFailed:     {StateValidating, StateIdle},
}

// Submitter delivers a locally valid field map to the submission handler.
// Implementations report every failure as a Result, never a Go error.
type Submitter interface {
	Submit(ctx context.Context, fields types.Fields) types.Result
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, fields types.Fields) types.Result

func (f SubmitterFunc) Submit(ctx context.Context, fields types.Fields) types.Result {
	return f(ctx, fields)
}

// View is a snapshot of everything a renderer needs.
type View struct {
	State  State
	Values types.Fields
	// Errors holds the single message displayed next to each field.
	Errors         map[string]string
	Message        string
	SubmitDisabled bool
	// FollowUpURL is only set after a successful submission.
	FollowUpURL string
	Result      *types.Result
}

// Controller is safe for concurrent use; the submitting state doubles as
// the guard against a second submit while the first is outstanding.
type Controller struct {
	validator *validation.Validator
	submitter Submitter

	followUpURL string
	onSuccess   func(types.Result)
	observe     func(from, to State)

	mu      sync.Mutex
	state   State
	values  types.Fields
	errs    types.FieldErrors
	message string
	result  *types.Result
}

// Option configures a Controller.
type Option func(*Controller)

// WithFollowUp sets a call-to-action link (e.g. a payment page) that is
// revealed only after a successful submission.
func WithFollowUp(url string) Option {
	return func(c *Controller) { c.followUpURL = url }
}

// WithSuccessNotify registers a callback run after a successful result has
// been applied. It runs without the controller lock held.
func WithSuccessNotify(fn func(types.Result)) Option {
	return func(c *Controller) { c.onSuccess = fn }
}

// WithTransitionObserver is called on every state change, with the
// controller lock held; fn must not call back into the controller.
func WithTransitionObserver(fn func(from, to State)) Option {
	return func(c *Controller) { c.observe = fn }
}

// New returns an idle controller with empty fields.
func New(v *validation.Validator, s Submitter, opts ...Option) *Controller {
	c := &Controller{
		validator: v,
		submitter: s,
		state:     StateIdle,
		values:    emptyValues(),
		errs:      types.FieldErrors{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set records the input for one field.
func (c *Controller) Set(field, value string) error {
	if !slices.Contains(types.FieldKeys, field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	c.values[field] = value
	return nil
}

// SetAll records every known key of fields; unknown keys are ignored.
func (c *Controller) SetAll(fields types.Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	for _, key := range types.FieldKeys {
		if v, ok := fields[key]; ok {
			c.values[key] = v
		}
	}
	return nil
}

// Submit runs one submission attempt. It returns ErrBusy if another attempt
// is in flight; every other outcome is reflected in the controller's state
// rather than returned.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}

	// Errors from the previous attempt are cleared before re-validating.
	c.errs = types.FieldErrors{}
	c.message = ""
	c.result = nil
	c.transition(StateValidating)

	if _, fieldErrs := c.validator.Validate(c.values); fieldErrs != nil {
		c.errs = fieldErrs
		c.message = MsgCheckForm
		c.transition(StateFailed)
		c.mu.Unlock()
		return nil
	}

	c.transition(StateSubmitting)
	fields := c.values.Clone()
	c.mu.Unlock()

	res := c.submitter.Submit(ctx, fields)

	c.mu.Lock()
	c.receive(res)
	succeeded := c.state == StateSuccess
	c.mu.Unlock()

	if succeeded && c.onSuccess != nil {
		c.onSuccess(res)
	}
	return nil
}

// receive applies a submission result. Caller holds c.mu.
func (c *Controller) receive(res types.Result) {
	c.result = &res

	if res.Success {
		c.values = emptyValues()
		c.errs = types.FieldErrors{}
		c.message = res.Message
		c.transition(StateSuccess)
		return
	}

	c.message = res.Message
	if c.message == "" {
		c.message = MsgCheckForm
	}
	for field, msgs := range res.Errors {
		if len(msgs) > 0 {
			c.errs[field] = []string{msgs[0]}
		}
	}
	c.transition(StateFailed)
}

// Reset returns the form to idle with empty fields.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	c.values = emptyValues()
	c.errs = types.FieldErrors{}
	c.message = ""
	c.result = nil
	if c.state != StateIdle {
		c.transition(StateIdle)
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmitDisabled reports whether the submit control should be disabled.
func (c *Controller) SubmitDisabled() bool {
	return c.State() == StateSubmitting
}

// FieldError returns the message to display next to field, or "".
func (c *Controller) FieldError(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.First(field)
}

// Message returns the form-level feedback message.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// FollowUp returns the call-to-action link once a submission succeeded.
func (c *Controller) FollowUp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSuccess {
		return ""
	}
	return c.followUpURL
}

// View returns a consistent snapshot of the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(map[string]string, len(c.errs))
	for field := range c.errs {
		if msg := c.errs.First(field); msg != "" {
			errs[field] = msg
		}
	}

	v := View{
		State:          c.state,
		Values:         c.values.Clone(),
		Errors:         errs,
		Message:        c.message,
		SubmitDisabled: c.state == StateSubmitting,
		Result:         c.result,
	}
	if c.state == StateSuccess {
		v.FollowUpURL = c.followUpURL
	}
	return v
}

// transition moves to next. Caller holds c.mu. An undefined transition is
// a programming error in this package.
func (c *Controller) transition(next State) {
	if !slices.Contains(transitions[c.state], next) {
		panic(fmt.Sprintf("form: invalid transition %s → %s", c.state, next))
	}
	prev := c.state
	c.state = next
	if c.observe != nil {
		c.observe(prev, next)
	}
}

func emptyValues() types.Fields {
	values := make(types.Fields, len(types.FieldKeys))
	for _, key := range types.FieldKeys {
		values[key] = ""
	}
	return values
}
