// Package types holds the shared data structures used across the
// application. Handlers, the form controller, the submission service and
// the record store all import types without depending on each other.
package types

import "maps"

// Field keys of the sign-up form. The same keys are used for HTML input
// names, JSON payloads and per-field error maps.
const (
	FieldParentFirstName  = "parentFirstName"
	FieldParentLastName   = "parentLastName"
	FieldStudentFirstName = "studentFirstName"
	FieldStudentLastName  = "studentLastName"
	FieldEmail            = "email"
	FieldCodingExperience = "codingExperience"
	FieldPreferredWeek    = "preferredWeek"
	FieldStudentGrade     = "studentGrade"
)

// FieldKeys lists every form field in display order.
var FieldKeys = []string{
	FieldParentFirstName,
	FieldParentLastName,
	FieldStudentFirstName,
	FieldStudentLastName,
	FieldEmail,
	FieldCodingExperience,
	FieldPreferredWeek,
	FieldStudentGrade,
}

// Fields is the raw, untrusted field map coming from a form post or a JSON
// body. Selection fields carry the identifier of the chosen option.
type Fields map[string]string

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// Registration is a validated sign-up record.
//
// Struct tags serve two purposes:
//
//  1. json:"...": the wire name, identical to the form field key.
//  2. validate:"...": rules checked by go-playground/validator. "session"
//     and "grade" are custom tags bound to the configured catalogs.
//
// A Registration is only ever produced by the validation package and is
// never mutated afterwards.
type Registration struct {
	ParentFirstName  string `json:"parentFirstName"  validate:"required"`
	ParentLastName   string `json:"parentLastName"   validate:"required"`
	StudentFirstName string `json:"studentFirstName" validate:"required"`
	StudentLastName  string `json:"studentLastName"  validate:"required"`
	Email            string `json:"email"            validate:"required,email"`
	CodingExperience string `json:"codingExperience" validate:"required,oneof=none beginner intermediate"`
	PreferredWeek    string `json:"preferredWeek"    validate:"required,session"`
	StudentGrade     string `json:"studentGrade"     validate:"required,grade"`
}

// Fields converts r back to the raw field map.
func (r Registration) Fields() Fields {
	return Fields{
		FieldParentFirstName:  r.ParentFirstName,
		FieldParentLastName:   r.ParentLastName,
		FieldStudentFirstName: r.StudentFirstName,
		FieldStudentLastName:  r.StudentLastName,
		FieldEmail:            r.Email,
		FieldCodingExperience: r.CodingExperience,
		FieldPreferredWeek:    r.PreferredWeek,
		FieldStudentGrade:     r.StudentGrade,
	}
}

// FieldErrors maps a field key to its ordered, non-empty list of
// human-readable violations.
type FieldErrors map[string][]string

// Add appends msg to the list for field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// First returns the first message reported for field, or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Outcome tags a Result.
type Outcome string

const (
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeTransmitFailed   Outcome = "transmit_failed"
	OutcomeSuccess          Outcome = "success"
)

// Result is the structured outcome of one submission. It is derived per
// request and never stored.
//
//	{ "outcome": "success", "success": true, "message": "Thanks ...",
//	  "submissionData": { ... } }
type Result struct {
	Outcome        Outcome       `json:"outcome"`
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	Errors         FieldErrors   `json:"errors,omitempty"`
	SubmissionData *Registration `json:"submissionData,omitempty"`
}

// ExperienceLevel is one option of the coding/AI experience select.
type ExperienceLevel struct {
	Value string
	Label string
}

// ExperienceLevels is the fixed experience enumeration, in display order.
var ExperienceLevels = []ExperienceLevel{
	{Value: "none", Label: "None - Curious Explorer"},
	{Value: "beginner", Label: "Beginner - Some exposure to tech/AI tools"},
	{Value: "intermediate", Label: "Intermediate - Has experimented with AI or coding"},
}

// DefaultSessions is the camp's default set of preferred-week options.
var DefaultSessions = []string{
	"Week 1 (July 8-12)",
	"Week 2 (July 15-19)",
	"Week 3 (July 22-26)",
	"Week 4 (July 29 - Aug 2)",
}

// DefaultGrades is the default set of grade identifiers.
var DefaultGrades = []string{
	"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "Other",
}

// Catalog holds the selectable options the validator checks against.
type Catalog struct {
	Sessions []string
	Grades   []string
}

// DefaultCatalog returns the built-in session and grade options.
func DefaultCatalog() Catalog {
	return Catalog{
		Sessions: append([]string(nil), DefaultSessions...),
		Grades:   append([]string(nil), DefaultGrades...),
	}
}
