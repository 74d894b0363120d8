// Package validation is the single constraint set for a sign-up.
//
// The same *Validator is evaluated twice: by the form controller as a
// pre-flight check and by the submission service as the authoritative
// check. Both call Validate, so the two trust boundaries cannot drift.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/go-playground/validator/v10"
)

// Messages reported per field. The "" key is the fallback used for any tag
// that has no dedicated wording.
var messages = map[string]map[string]string{
	types.FieldParentFirstName:  {"": "Parent's first name is required."},
	types.FieldParentLastName:   {"": "Parent's last name is required."},
	types.FieldStudentFirstName: {"": "Student's first name is required."},
	types.FieldStudentLastName:  {"": "Student's last name is required."},
	types.FieldEmail:            {"": "Invalid email address."},
	types.FieldCodingExperience: {"": "Please select coding experience."},
	types.FieldPreferredWeek:    {"": "Please select a preferred week."},
	types.FieldStudentGrade: {
		"":      "Student's grade is required.",
		"grade": "Please select a valid grade.",
	},
}

// Validator checks raw field maps against the registration rules. It is
// safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	catalog  types.Catalog
}

// New builds a Validator whose "session" and "grade" rules accept exactly
// the options in catalog. Empty catalog lists fall back to the defaults.
func New(catalog types.Catalog) (*Validator, error) {
	if len(catalog.Sessions) == 0 {
		catalog.Sessions = types.DefaultSessions
	}
	if len(catalog.Grades) == 0 {
		catalog.Grades = types.DefaultGrades
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their json names ("email", not "Email") so error
	// keys line up with the form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("session", oneOf(catalog.Sessions)); err != nil {
		return nil, fmt.Errorf("validation.New: register session: %w", err)
	}
	if err := v.RegisterValidation("grade", oneOf(catalog.Grades)); err != nil {
		return nil, fmt.Errorf("validation.New: register grade: %w", err)
	}

	return &Validator{
		validate: v,
		catalog: types.Catalog{
			Sessions: append([]string(nil), catalog.Sessions...),
			Grades:   append([]string(nil), catalog.Grades...),
		},
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(catalog types.Catalog) *Validator {
	v, err := New(catalog)
	if err != nil {
		panic(err)
	}
	return v
}

// Catalog returns the options this validator accepts.
func (v *Validator) Catalog() types.Catalog {
	return v.catalog
}

// Validate trims every value in fields and checks it against the rules.
//
// On success it returns the record and nil. On failure it returns a zero
// Registration and a FieldErrors naming exactly the offending fields, each
// with a non-empty message list. Calling Validate twice with the same input
// yields the same result.
func (v *Validator) Validate(fields types.Fields) (types.Registration, types.FieldErrors) {
	reg := types.Registration{
		ParentFirstName:  value(fields, types.FieldParentFirstName),
		ParentLastName:   value(fields, types.FieldParentLastName),
		StudentFirstName: value(fields, types.FieldStudentFirstName),
		StudentLastName:  value(fields, types.FieldStudentLastName),
		Email:            value(fields, types.FieldEmail),
		CodingExperience: value(fields, types.FieldCodingExperience),
		PreferredWeek:    value(fields, types.FieldPreferredWeek),
		StudentGrade:     value(fields, types.FieldStudentGrade),
	}

	err := v.validate.Struct(reg)
	if err == nil {
		return reg, nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		// Only reachable if Struct is handed a non-struct.
		panic(fmt.Sprintf("validation: unexpected error: %v", err))
	}

	fieldErrs := make(types.FieldErrors, len(validateErrs))
	for _, e := range validateErrs {
		fieldErrs.Add(e.Field(), message(e.Field(), e.Tag()))
	}
	return types.Registration{}, fieldErrs
}

func value(fields types.Fields, key string) string {
	return strings.TrimSpace(fields[key])
}

func message(field, tag string) string {
	byTag, ok := messages[field]
	if !ok {
		return fmt.Sprintf("field %s is invalid", field)
	}
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	return byTag[""]
}

func oneOf(options []string) validator.Func {
	set := make(map[string]struct{}, len(options))
	for _, o := range options {
		set[o] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}
