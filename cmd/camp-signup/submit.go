package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/camp-signup/internal/form"
	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/validation"
)

var errRegistrationFailed = errors.New("registration failed")

var submitFlags = []struct{ flag, field, usage string }{
	{"parent-first-name", types.FieldParentFirstName, "parent's first name"},
	{"parent-last-name", types.FieldParentLastName, "parent's last name"},
	{"student-first-name", types.FieldStudentFirstName, "student's first name"},
	{"student-last-name", types.FieldStudentLastName, "student's last name"},
	{"email", types.FieldEmail, "contact email address"},
	{"experience", types.FieldCodingExperience, "coding experience: none, beginner or intermediate"},
	{"week", types.FieldPreferredWeek, `preferred camp week, e.g. "Week 1 (July 8-12)"`},
	{"grade", types.FieldStudentGrade, "student's grade: K, 1-12 or Other"},
}

func newSubmitCmd() *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
		sessions []string
		grades   []string
	)
	values := make(map[string]*string, len(submitFlags))

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a registration to a running camp-signup server",
		Long: `Fill in the sign-up form from flags, check it locally and post it to the
registration API. The result is printed as JSON; the command fails when the
registration is not accepted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := types.DefaultCatalog()
			if len(sessions) > 0 {
				catalog.Sessions = sessions
			}
			if len(grades) > 0 {
				catalog.Grades = grades
			}
			v, err := validation.New(catalog)
			if err != nil {
				return err
			}

			sub := form.NewHTTPSubmitter(endpoint, &http.Client{Timeout: timeout})
			ctrl := form.New(v, sub)

			fields := make(types.Fields, len(values))
			for key, val := range values {
				fields[key] = *val
			}
			if err := ctrl.SetAll(fields); err != nil {
				return err
			}
			if err := ctrl.Submit(cmd.Context()); err != nil {
				return err
			}

			view := ctrl.View()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(submitOutput{
				State:   view.State,
				Message: view.Message,
				Errors:  view.Errors,
			}); err != nil {
				return err
			}

			if view.State != form.StateSuccess {
				return fmt.Errorf("%w: %s", errRegistrationFailed, view.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8082/api/signups", "registration API URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().StringSliceVar(&sessions, "sessions", nil, "accepted camp weeks, when the server uses its own list")
	cmd.Flags().StringSliceVar(&grades, "grades", nil, "accepted grades, when the server uses its own list")
	for _, f := range submitFlags {
		values[f.field] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

type submitOutput struct {
	State   form.State        `json:"state"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
