package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/camp-signup/internal/types"
)

// MsgUnreachable is reported when the submission handler cannot be reached
// or answers with something that is not a submission result.
const MsgUnreachable = "An unexpected error occurred while submitting your registration. Please try again."

// HTTPSubmitter posts the field map as JSON to a remote submission handler
// (POST /api/signups) and decodes the structured result it answers with,
// whatever the status code.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSubmitter returns a submitter for endpoint. A nil client gets a
// default one with a 30s timeout.
func NewHTTPSubmitter(endpoint string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSubmitter{endpoint: endpoint, client: client}
}

// Submit implements Submitter.
func (h *HTTPSubmitter) Submit(ctx context.Context, fields types.Fields) types.Result {
	res, err := h.post(ctx, fields)
	if err != nil {
		slog.Error("submission request failed",
			slog.String("endpoint", h.endpoint),
			slog.String("error", err.Error()))
		return types.Result{Outcome: types.OutcomeTransmitFailed, Message: MsgUnreachable}
	}
	return res
}

func (h *HTTPSubmitter) post(ctx context.Context, fields types.Fields) (types.Result, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return types.Result{}, fmt.Errorf("encode fields: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return types.Result{}, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	var res types.Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&res); err != nil {
		return types.Result{}, fmt.Errorf("decode result (status %d): %w", resp.StatusCode, err)
	}
	if res.Outcome == "" {
		return types.Result{}, fmt.Errorf("status %d: reply is not a submission result", resp.StatusCode)
	}
	return res, nil
}
