// Package registration contains the JSON API handler for sign-ups.
//
// Same closure/factory pattern as the rest of the HTTP layer:
//
//	router.HandleFunc("POST /api/signups", registration.New(service))
//
// New is called once at startup; the returned func runs per request.
package registration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/utils/response"
)

const maxBodyBytes = 64 << 10

// Submitter is the submission handler the API forwards to.
type Submitter interface {
	Submit(ctx context.Context, fields types.Fields) types.Result
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/signups
//
// Request body (JSON, or an url-encoded form with the same keys):
//
//	{ "parentFirstName": "Ana", "parentLastName": "Lee",
//	  "studentFirstName": "Kai", "studentLastName": "Lee",
//	  "email": "ana@example.com", "codingExperience": "beginner",
//	  "preferredWeek": "Week 1 (July 8-12)", "studentGrade": "5" }
//
// Responses always carry a types.Result:
//
//	201 Created      stored
//	400 Bad Request  validation failed (per-field errors)
//	502 Bad Gateway  the record store rejected or could not be reached
//
// An empty or malformed body is answered with 400 and the general error
// envelope, before any validation runs.
// ─────────────────────────────────────────────────────────────────────────────
func New(submitter Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("registration received")

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		fields, err := decodeFields(r)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		res := submitter.Submit(r.Context(), fields)

		slog.Info("registration handled", slog.String("outcome", string(res.Outcome)))
		response.WriteResult(w, res)
	}
}

// decodeFields reads a JSON object of strings or an url-encoded form.
func decodeFields(r *http.Request) (types.Fields, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		fields := types.Fields{}
		for _, key := range types.FieldKeys {
			if _, ok := r.PostForm[key]; ok {
				fields[key] = r.PostForm.Get(key)
			}
		}
		if len(r.PostForm) == 0 {
			return nil, io.EOF
		}
		return fields, nil
	}

	var fields types.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
