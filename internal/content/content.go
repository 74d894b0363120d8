// Package content loads the landing page copy.
//
// The copy lives in YAML so the camp can change wording without a rebuild.
// Body fields may carry light inline markup (<em>, <strong>, <q>, links);
// they are passed through a bluemonday policy before being trusted by the
// page templates. Everything else is plain text and escaped as usual.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Page is the copy for every section of the landing page.
type Page struct {
	Brand  string    `yaml:"brand"`
	Nav    []NavItem `yaml:"nav"`
	Hero   Hero      `yaml:"hero"`
	Info   Info      `yaml:"info"`
	About  About     `yaml:"about"`
	SignUp SignUp    `yaml:"sign_up"`
	Footer string    `yaml:"footer"`
}

type NavItem struct {
	Label  string `yaml:"label"`
	Anchor string `yaml:"anchor"`
}

type Hero struct {
	Headline []string `yaml:"headline"`
	Tagline  string   `yaml:"tagline"`
	CTA      string   `yaml:"cta"`
}

// Block is a titled piece of rich text. HTML is filled in by Load.
type Block struct {
	Title string        `yaml:"title"`
	Body  string        `yaml:"body"`
	HTML  template.HTML `yaml:"-"`
}

type Info struct {
	Title string  `yaml:"title"`
	Intro string  `yaml:"intro"`
	Items []Block `yaml:"items"`
}

type Instructor struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

type About struct {
	Title       string       `yaml:"title"`
	Intro       string       `yaml:"intro"`
	Pillars     []Block      `yaml:"pillars"`
	Instructors []Instructor `yaml:"instructors"`
}

// SignUp holds the sign-up section's labels.
type SignUp struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Submit       string `yaml:"submit"`
	Submitting   string `yaml:"submitting"`
	SuccessTitle string `yaml:"success_title"`
	FailureTitle string `yaml:"failure_title"`
	FollowUp     string `yaml:"follow_up"`
}

// Default returns the embedded copy.
func Default() (*Page, error) {
	return parse(defaultYAML)
}

// Load reads copy from path, or the embedded default when path is empty.
func Load(path string) (*Page, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content.Load: %w", err)
	}
	page, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("content.Load %s: %w", path, err)
	}
	return page, nil
}

func parse(raw []byte) (*Page, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var page Page
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(page.Brand) == "" {
		return nil, errors.New("brand is required")
	}
	if page.SignUp.Submit == "" {
		page.SignUp.Submit = "Register Now!"
	}
	if page.SignUp.Submitting == "" {
		page.SignUp.Submitting = "Submitting..."
	}

	for i := range page.Info.Items {
		page.Info.Items[i].HTML = Sanitize(page.Info.Items[i].Body)
	}
	for i := range page.About.Pillars {
		page.About.Pillars[i].HTML = Sanitize(page.About.Pillars[i].Body)
	}
	return &page, nil
}

// Sanitize strips anything but inline formatting and safe links from s.
func Sanitize(s string) template.HTML {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("em", "strong", "b", "i", "q", "br", "code")
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return template.HTML(strings.TrimSpace(policy.Sanitize(s)))
}
