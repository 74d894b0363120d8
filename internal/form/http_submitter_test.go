package form_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aanand-mishra/camp-signup/internal/form"
	"github.com/aanand-mishra/camp-signup/internal/types"
)

func TestHTTPSubmitter_DecodesResultForAnyStatus(t *testing.T) {
	want := types.Result{
		Outcome: types.OutcomeValidationFailed,
		Message: "Validation failed. Please check the form.",
		Errors:  types.FieldErrors{"email": {"Invalid email address."}},
	}

	var got types.Fields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %q", r.Method, r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	res := form.NewHTTPSubmitter(srv.URL, srv.Client()).Submit(context.Background(), types.Fields{"email": "x"})
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if got["email"] != "x" {
		t.Fatalf("fields not forwarded: %v", got)
	}
}

func TestHTTPSubmitter_GarbageReplyIsTransmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","error":"boom"}`))
	}))
	defer srv.Close()

	res := form.NewHTTPSubmitter(srv.URL, srv.Client()).Submit(context.Background(), types.Fields{})
	want := types.Result{Outcome: types.OutcomeTransmitFailed, Message: form.MsgUnreachable}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSubmitter_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := form.NewHTTPSubmitter(url, nil).Submit(context.Background(), types.Fields{})
	if res.Success || res.Outcome != types.OutcomeTransmitFailed || res.Message == "" {
		t.Fatalf("expected transmit failure, got %+v", res)
	}
}
