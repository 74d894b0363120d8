// Package signup is the authoritative submission handler: it re-validates
// a raw field map, writes the record to the external store once, and turns
// every outcome into a types.Result.
//
// Per call the handler moves through
//
//	received → validating → validation_failed
//	                      → transmitting → transmit_failed | transmitted
//
// and never retries. No error escapes as a Go error; failures are results.
package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aanand-mishra/camp-signup/internal/storage"
	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/validation"
)

// User-facing messages.
const (
	MsgValidationFailed = "Validation failed. Please check the form."
	MsgStoreRejected    = "Failed to submit registration to Airtable."
	MsgUnexpected       = "An unexpected error occurred while submitting your registration. Please try again."
)

// Stage names a step of one submission.
type Stage string

const (
	StageReceived         Stage = "received"
	StageValidating       Stage = "validating"
	StageValidationFailed Stage = "validation_failed"
	StageTransmitting     Stage = "transmitting"
	StageTransmitFailed   Stage = "transmit_failed"
	StageTransmitted      Stage = "transmitted"
)

var tracer = otel.Tracer("github.com/aanand-mishra/camp-signup/internal/signup")

// SuccessHook runs after a registration has been written. It is the
// extension point for follow-up steps such as sending a payment link; it
// cannot change the result.
type SuccessHook func(ctx context.Context, reg types.Registration, recordID string)

// Service handles submissions. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	validator *validation.Validator
	store     storage.Storage
	log       *slog.Logger
	hooks     []SuccessHook
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithSuccessHook registers a hook to run after each successful write.
func WithSuccessHook(hook SuccessHook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hook) }
}

// New returns a Service writing to store.
func New(v *validation.Validator, store storage.Storage, opts ...Option) *Service {
	s := &Service{
		validator: v,
		store:     store,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates fields and, if they are valid, performs exactly one
// write to the record store.
func (s *Service) Submit(ctx context.Context, fields types.Fields) types.Result {
	id := uuid.NewString()
	log := s.log.With(slog.String("submission_id", id))

	ctx, span := tracer.Start(ctx, "signup.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("signup.submission_id", id))

	log.Debug("submission", slog.String("stage", string(StageReceived)))

	// ── validating ───────────────────────────────────────────────────────
	log.Debug("submission", slog.String("stage", string(StageValidating)))
	reg, fieldErrs := s.validator.Validate(fields)
	if fieldErrs != nil {
		log.Info("submission rejected",
			slog.String("stage", string(StageValidationFailed)),
			slog.Int("invalid_fields", len(fieldErrs)))
		span.SetAttributes(attribute.String("signup.outcome", string(types.OutcomeValidationFailed)))
		return types.Result{
			Outcome: types.OutcomeValidationFailed,
			Message: MsgValidationFailed,
			Errors:  fieldErrs,
		}
	}

	// ── transmitting ─────────────────────────────────────────────────────
	log.Debug("submission", slog.String("stage", string(StageTransmitting)))
	recordID, err := s.store.CreateRegistration(ctx, reg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transmit failed")
		span.SetAttributes(attribute.String("signup.outcome", string(types.OutcomeTransmitFailed)))
		log.Error("submission failed",
			slog.String("stage", string(StageTransmitFailed)),
			slog.String("error", err.Error()))
		return types.Result{
			Outcome: types.OutcomeTransmitFailed,
			Message: transmitMessage(err),
		}
	}

	log.Info("registration stored",
		slog.String("stage", string(StageTransmitted)),
		slog.String("record_id", recordID),
		slog.String("preferred_week", reg.PreferredWeek))
	span.SetAttributes(attribute.String("signup.outcome", string(types.OutcomeSuccess)))

	for _, hook := range s.hooks {
		hook(ctx, reg, recordID)
	}

	return types.Result{
		Outcome:        types.OutcomeSuccess,
		Success:        true,
		Message:        ConfirmationMessage(reg),
		SubmissionData: &reg,
	}
}

// ConfirmationMessage is the text shown after a successful registration.
func ConfirmationMessage(reg types.Registration) string {
	return fmt.Sprintf(
		"Thanks for signing up, %s! We've received the registration for %s. We'll be in touch at %s regarding %s.",
		reg.ParentFirstName, reg.StudentFirstName, reg.Email, reg.PreferredWeek)
}

// transmitMessage builds the user-facing message for a failed write. Only
// a rejection reported by the store contributes detail; everything else
// gets the generic message.
func transmitMessage(err error) string {
	var statusErr *storage.StatusError
	if !errors.As(err, &statusErr) {
		return MsgUnexpected
	}
	switch {
	case statusErr.Detail != "":
		return MsgStoreRejected + " Details: " + statusErr.Detail
	case statusErr.Status != "":
		return MsgStoreRejected + " Status: " + statusErr.Status
	default:
		return MsgStoreRejected
	}
}
