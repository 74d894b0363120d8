// Package landing serves the marketing page and its no-JavaScript sign-up
// flow.
//
//	GET  /        → hero, camp info, about and sign-up sections
//	POST /signup  → run the form controller, re-render with feedback
//
// The POST handler drives a form.Controller exactly like an in-browser
// form would: local validation first, then the submitter, then the page
// is rendered from the controller's view.
package landing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/camp-signup/internal/content"
	"github.com/aanand-mishra/camp-signup/internal/form"
	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page renders the landing page. Build it once with NewPage.
type Page struct {
	tmpl      *template.Template
	content   *content.Page
	validator *validation.Validator
	followUp  string
	now       func() time.Time
}

// NewPage parses the templates. followUpURL is revealed after a successful
// registration; leave it empty to show no follow-up step.
func NewPage(pageCopy *content.Page, v *validation.Validator, followUpURL string) (*Page, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("landing.NewPage: parse templates: %w", err)
	}
	return &Page{
		tmpl:      tmpl,
		content:   pageCopy,
		validator: v,
		followUp:  followUpURL,
		now:       time.Now,
	}, nil
}

type inputField struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

type pageData struct {
	Content    *content.Page
	Form       form.View
	Inputs     []inputField
	Experience []types.ExperienceLevel
	Sessions   []string
	Grades     []string
	Year       int
}

var textInputs = []struct{ name, label, kind string }{
	{types.FieldParentFirstName, "Parent's First Name", "text"},
	{types.FieldParentLastName, "Parent's Last Name", "text"},
	{types.FieldStudentFirstName, "Student's First Name", "text"},
	{types.FieldStudentLastName, "Student's Last Name", "text"},
	{types.FieldEmail, "Email Address", "email"},
}

// Index handles GET /{$}
func Index(p *Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := form.New(p.validator, nil)
		p.render(w, http.StatusOK, ctrl.View())
	}
}

// SignUp handles POST /signup. sub receives the field map once the local
// checks pass; in production it is the in-process submission service.
func SignUp(p *Page, sub form.Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		fields := types.Fields{}
		for _, key := range types.FieldKeys {
			fields[key] = r.PostForm.Get(key)
		}

		ctrl := form.New(p.validator, sub, form.WithFollowUp(p.followUp))
		if err := ctrl.SetAll(fields); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := ctrl.Submit(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		view := ctrl.View()
		slog.Info("sign-up form processed", slog.String("state", string(view.State)))
		p.render(w, statusFor(view), view)
	}
}

func statusFor(view form.View) int {
	switch {
	case view.State == form.StateSuccess:
		return http.StatusOK
	case view.Result != nil && view.Result.Outcome == types.OutcomeTransmitFailed:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func (p *Page) render(w http.ResponseWriter, status int, view form.View) {
	catalog := p.validator.Catalog()

	inputs := make([]inputField, 0, len(textInputs))
	for _, in := range textInputs {
		inputs = append(inputs, inputField{
			Name:  in.name,
			Label: in.label,
			Type:  in.kind,
			Value: view.Values[in.name],
			Error: view.Errors[in.name],
		})
	}

	data := pageData{
		Content:    p.content,
		Form:       view,
		Inputs:     inputs,
		Experience: types.ExperienceLevels,
		Sessions:   catalog.Sessions,
		Grades:     catalog.Grades,
		Year:       p.now().Year(),
	}

	// Render into a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		slog.Error("render landing page", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
