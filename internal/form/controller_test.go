package form_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aanand-mishra/camp-signup/internal/form"
	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/validation"
)

func fill(t *testing.T, c *form.Controller) {
	t.Helper()
	err := c.SetAll(types.Fields{
		types.FieldParentFirstName:  "Ana",
		types.FieldParentLastName:   "Lee",
		types.FieldStudentFirstName: "Kai",
		types.FieldStudentLastName:  "Lee",
		types.FieldEmail:            "ana@example.com",
		types.FieldCodingExperience: "beginner",
		types.FieldPreferredWeek:    "Week 1 (July 8-12)",
		types.FieldStudentGrade:     "5",
	})
	if err != nil {
		t.Fatalf("SetAll: %v", err)
	}
}

func newValidator() *validation.Validator {
	return validation.MustNew(types.DefaultCatalog())
}

func TestSubmit_LocalValidationBlocksSubmitter(t *testing.T) {
	var calls atomic.Int32
	sub := form.SubmitterFunc(func(context.Context, types.Fields) types.Result {
		calls.Add(1)
		return types.Result{}
	})

	var seen []form.State
	c := form.New(newValidator(), sub, form.WithTransitionObserver(func(_, to form.State) {
		seen = append(seen, to)
	}))
	fill(t, c)
	if err := c.Set(types.FieldEmail, "not-an-email"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if calls.Load() != 0 {
		t.Fatalf("submitter must not be called on local failure")
	}
	if c.State() != form.StateFailed {
		t.Fatalf("expected failed, got %s", c.State())
	}
	if got := c.FieldError(types.FieldEmail); got != "Invalid email address." {
		t.Fatalf("unexpected email error %q", got)
	}
	if got := c.FieldError(types.FieldParentFirstName); got != "" {
		t.Fatalf("valid field must carry no error, got %q", got)
	}
	if diff := cmp.Diff([]form.State{form.StateValidating, form.StateFailed}, seen); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_SuccessClearsFieldsAndRevealsFollowUp(t *testing.T) {
	const msg = "Thanks for signing up, Ana! We've received the registration for Kai. We'll be in touch at ana@example.com regarding Week 1 (July 8-12)."

	var received types.Fields
	sub := form.SubmitterFunc(func(_ context.Context, f types.Fields) types.Result {
		received = f
		return types.Result{Outcome: types.OutcomeSuccess, Success: true, Message: msg}
	})

	var seen []form.State
	var notified int
	c := form.New(newValidator(), sub,
		form.WithFollowUp("https://pay.example.com/camp"),
		form.WithSuccessNotify(func(types.Result) { notified++ }),
		form.WithTransitionObserver(func(_, to form.State) { seen = append(seen, to) }),
	)
	fill(t, c)

	if got := c.FollowUp(); got != "" {
		t.Fatalf("follow-up must stay hidden before success, got %q", got)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if received[types.FieldStudentFirstName] != "Kai" {
		t.Fatalf("submitter did not receive the full field set: %v", received)
	}
	want := []form.State{form.StateValidating, form.StateSubmitting, form.StateSuccess}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}

	view := c.View()
	if view.Message != msg {
		t.Fatalf("message must be echoed verbatim, got %q", view.Message)
	}
	for _, key := range types.FieldKeys {
		if view.Values[key] != "" {
			t.Errorf("field %s not cleared: %q", key, view.Values[key])
		}
	}
	if view.FollowUpURL != "https://pay.example.com/camp" || c.FollowUp() == "" {
		t.Fatalf("follow-up not revealed: %+v", view)
	}
	if view.SubmitDisabled {
		t.Fatal("submit must be enabled after the result")
	}
	if notified != 1 {
		t.Fatalf("expected one success notification, got %d", notified)
	}
}

func TestSubmit_ServerErrorsAttachFirstMessage(t *testing.T) {
	sub := form.SubmitterFunc(func(context.Context, types.Fields) types.Result {
		return types.Result{
			Outcome: types.OutcomeValidationFailed,
			Message: "Validation failed. Please check the form.",
			Errors: types.FieldErrors{
				types.FieldEmail:        {"Email already registered.", "second"},
				types.FieldStudentGrade: {},
			},
		}
	})

	c := form.New(newValidator(), sub, form.WithFollowUp("https://pay.example.com"))
	fill(t, c)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	view := c.View()
	if view.State != form.StateFailed || view.SubmitDisabled {
		t.Fatalf("expected failed with enabled submit, got %+v", view)
	}
	want := map[string]string{types.FieldEmail: "Email already registered."}
	if diff := cmp.Diff(want, view.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if view.Values[types.FieldParentFirstName] != "Ana" {
		t.Fatal("fields must be kept after a failure")
	}
	if view.FollowUpURL != "" {
		t.Fatal("follow-up must stay hidden after a failure")
	}
}

func TestSubmit_TransmitFailureKeepsServerMessage(t *testing.T) {
	sub := form.SubmitterFunc(func(context.Context, types.Fields) types.Result {
		return types.Result{Outcome: types.OutcomeTransmitFailed, Message: "Failed to submit registration to Airtable. Status: Bad Gateway"}
	})
	c := form.New(newValidator(), sub)
	fill(t, c)
	c.Submit(context.Background())

	if got := c.Message(); got != "Failed to submit registration to Airtable. Status: Bad Gateway" {
		t.Fatalf("unexpected message %q", got)
	}
	if c.State() != form.StateFailed {
		t.Fatalf("expected failed, got %s", c.State())
	}
}

func TestSubmit_BusyGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	sub := form.SubmitterFunc(func(context.Context, types.Fields) types.Result {
		calls.Add(1)
		close(entered)
		<-release
		return types.Result{Outcome: types.OutcomeSuccess, Success: true, Message: "ok"}
	})

	c := form.New(newValidator(), sub)
	fill(t, c)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-entered

	if !c.SubmitDisabled() {
		t.Fatal("submit must be disabled while submitting")
	}
	if err := c.Submit(context.Background()); !errors.Is(err, form.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := c.Set(types.FieldEmail, "x@example.com"); !errors.Is(err, form.ErrBusy) {
		t.Fatalf("expected ErrBusy from Set, got %v", err)
	}
	if err := c.Reset(); !errors.Is(err, form.ErrBusy) {
		t.Fatalf("expected ErrBusy from Reset, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one submission, got %d", calls.Load())
	}
	if c.State() != form.StateSuccess {
		t.Fatalf("expected success, got %s", c.State())
	}
}

func TestSubmit_ResubmitResetsErrors(t *testing.T) {
	attempt := 0
	sub := form.SubmitterFunc(func(context.Context, types.Fields) types.Result {
		attempt++
		if attempt == 1 {
			return types.Result{
				Outcome: types.OutcomeValidationFailed,
				Message: "Validation failed. Please check the form.",
				Errors:  types.FieldErrors{types.FieldStudentGrade: {"Please select a valid grade."}},
			}
		}
		return types.Result{Outcome: types.OutcomeSuccess, Success: true, Message: "ok"}
	})

	c := form.New(newValidator(), sub)
	fill(t, c)
	c.Submit(context.Background())
	if c.FieldError(types.FieldStudentGrade) == "" {
		t.Fatal("expected grade error after first attempt")
	}

	c.Submit(context.Background())
	if c.FieldError(types.FieldStudentGrade) != "" {
		t.Fatal("errors must be reset before a new attempt")
	}
	if attempt != 2 {
		t.Fatalf("expected exactly two explicit attempts, got %d", attempt)
	}
}

func TestReset(t *testing.T) {
	c := form.New(newValidator(), form.SubmitterFunc(func(context.Context, types.Fields) types.Result {
		return types.Result{}
	}))
	fill(t, c)
	c.Set(types.FieldEmail, "bad")
	c.Submit(context.Background())

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	view := c.View()
	if view.State != form.StateIdle || view.Message != "" || len(view.Errors) != 0 {
		t.Fatalf("expected clean idle view, got %+v", view)
	}
	if view.Values[types.FieldParentFirstName] != "" {
		t.Fatal("values must be cleared on reset")
	}
}

func TestSet_UnknownField(t *testing.T) {
	c := form.New(newValidator(), nil)
	if err := c.Set("favouriteColour", "blue"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}
