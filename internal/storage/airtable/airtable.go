// Package airtable provides an Airtable-backed implementation of the
// storage.Storage interface.
//
// Each registration becomes one row in a fixed table. The client sends one
// POST per call and never retries; a timeout is treated like any other
// transport failure.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aanand-mishra/camp-signup/internal/config"
	"github.com/aanand-mishra/camp-signup/internal/storage"
	"github.com/aanand-mishra/camp-signup/internal/types"
)

const maxResponseBytes = 1 << 20

var tracer = otel.Tracer("github.com/aanand-mishra/camp-signup/internal/storage/airtable")

// Airtable is the concrete implementation of storage.Storage.
type Airtable struct {
	endpoint string
	table    string
	token    string
	timeout  time.Duration
	client   *http.Client
}

// New builds a client for the collection described by cfg:
//
//	POST {base_url}/v0/{base_id}/{table}
func New(cfg config.Airtable) (*Airtable, error) {
	if cfg.Token == "" {
		return nil, errors.New("airtable.New: token is empty")
	}
	if cfg.BaseID == "" || cfg.Table == "" {
		return nil, errors.New("airtable.New: base id and table are required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("airtable.New: invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Airtable{
		endpoint: base.JoinPath("v0", cfg.BaseID, cfg.Table).String(),
		table:    cfg.Table,
		token:    cfg.Token,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// recordFields is the translation table from a Registration to the
// table's column names.
type recordFields struct {
	ParentFirstName  string `json:"Parent First Name"`
	ParentLastName   string `json:"Parent Last Name"`
	StudentFirstName string `json:"Student First Name"`
	StudentLastName  string `json:"Student Last Name"`
	Email            string `json:"Email"`
	CodingExperience string `json:"Coding Experience"`
	PreferredWeek    string `json:"Preferred Week"`
	StudentGrade     string `json:"Student Grade"`
}

type createRequest struct {
	Records []createRecord `json:"records"`
}

type createRecord struct {
	Fields recordFields `json:"fields"`
}

type createResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

func toFields(reg types.Registration) recordFields {
	return recordFields{
		ParentFirstName:  reg.ParentFirstName,
		ParentLastName:   reg.ParentLastName,
		StudentFirstName: reg.StudentFirstName,
		StudentLastName:  reg.StudentLastName,
		Email:            reg.Email,
		CodingExperience: reg.CodingExperience,
		PreferredWeek:    reg.PreferredWeek,
		StudentGrade:     reg.StudentGrade,
	}
}

// CreateRegistration writes reg as a single record and returns the record
// id Airtable assigned. A non-2xx reply is returned as *storage.StatusError; any
// other failure (network, timeout, undecodable body) is a wrapped error.
func (a *Airtable) CreateRegistration(ctx context.Context, reg types.Registration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "airtable.CreateRegistration",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("airtable.table", a.table)),
	)
	defer span.End()

	id, err := a.create(ctx, reg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create record failed")
		return "", err
	}

	span.SetAttributes(attribute.String("airtable.record_id", id))
	return id, nil
}

func (a *Airtable) create(ctx context.Context, reg types.Registration) (string, error) {
	body, err := json.Marshal(createRequest{
		Records: []createRecord{{Fields: toFields(reg)}},
	})
	if err != nil {
		return "", fmt.Errorf("CreateRegistration: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("CreateRegistration: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("CreateRegistration: post: %w", err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("CreateRegistration: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &storage.StatusError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Detail:     errorDetail(raw),
		}
	}

	var created createResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", fmt.Errorf("CreateRegistration: decode response: %w", err)
	}
	if len(created.Records) == 0 || created.Records[0].ID == "" {
		return "", errors.New("CreateRegistration: response confirmed no record")
	}

	return created.Records[0].ID, nil
}

// statusText prefers the reason phrase the server sent over the standard
// one for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// errorDetail extracts the message from either error shape Airtable uses:
//
//	{"error": {"type": "INVALID_VALUE", "message": "..."}}
//	{"error": "NOT_FOUND"}
func errorDetail(raw []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var structured struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &structured); err == nil {
		return strings.TrimSpace(structured.Message)
	}

	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	return ""
}
