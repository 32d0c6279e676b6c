package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/MikeSquared-Agency/checkin/internal/checkin"
	"github.com/MikeSquared-Agency/checkin/internal/config"
	"github.com/MikeSquared-Agency/checkin/internal/dialer"
	"github.com/MikeSquared-Agency/checkin/internal/slot"
	"github.com/MikeSquared-Agency/checkin/internal/vapi"
)

type stubTrigger struct {
	res  checkin.Result
	err  error
	reqs []checkin.Request
}

func (s *stubTrigger) Trigger(_ context.Context, req checkin.Request) (checkin.Result, error) {
	s.reqs = append(s.reqs, req)
	return s.res, s.err
}

func newTestServer(trigger Triggerer) *Server {
	info := Info{
		Timezone:     "America/New_York",
		TriggerHours: map[string]int{"morning": 7, "noon": 13, "evening": 21},
		DefaultSlot:  "morning",
	}
	return NewServer(8760, trigger, info, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(newTestServer(&stubTrigger{}), "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	w := serve(newTestServer(&stubTrigger{}), "/api/v1/checkin/status")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["agent"] != "checkin" {
		t.Errorf("expected agent checkin, got %v", body["agent"])
	}
	profile, _ := body["profile"].(map[string]any)
	if profile["timezone"] != "America/New_York" {
		t.Errorf("expected timezone in status, got %v", body["profile"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	w := serve(newTestServer(&stubTrigger{}), "/nonexistent")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	w := serve(newTestServer(&stubTrigger{}), "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected prometheus exposition format")
	}
}

func TestVapiCall_Success(t *testing.T) {
	trigger := &stubTrigger{res: checkin.Result{Call: dialer.CallResult{CallID: "call-123", Slot: slot.Evening}}}
	w := serve(newTestServer(trigger), "/api/vapi-call")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["success"] != true || body["slot"] != "evening" || body["callId"] != "call-123" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["message"] != "Call initiated for evening check-in" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if len(trigger.reqs) != 1 || trigger.reqs[0].Slot != "" {
		t.Errorf("expected clock resolution request, got %+v", trigger.reqs)
	}
}

func TestVapiCall_SlotOverride(t *testing.T) {
	trigger := &stubTrigger{res: checkin.Result{Call: dialer.CallResult{CallID: "c", Slot: slot.Noon}}}
	w := serve(newTestServer(trigger), "/api/vapi-call?slot=noon")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if trigger.reqs[0].Slot != slot.Noon {
		t.Errorf("expected noon override, got %q", trigger.reqs[0].Slot)
	}
}

func TestVapiCall_InvalidSlot(t *testing.T) {
	for _, target := range []string{"/api/vapi-call?slot=midnight", "/api/vapi-call?slot="} {
		t.Run(target, func(t *testing.T) {
			trigger := &stubTrigger{}
			w := serve(newTestServer(trigger), target)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			body := decode(t, w)
			if body["error"] != "Invalid or missing slot parameter" {
				t.Errorf("unexpected error: %v", body["error"])
			}
			valid, _ := body["validSlots"].([]any)
			if len(valid) != 3 || valid[0] != "morning" {
				t.Errorf("unexpected validSlots: %v", body["validSlots"])
			}
			if len(trigger.reqs) != 0 {
				t.Error("trigger should not run for an invalid slot")
			}
		})
	}
}

func TestVapiCall_MissingConfiguration(t *testing.T) {
	trigger := &stubTrigger{err: &checkin.ConfigError{Var: "PHONE_NUMBER"}}
	w := serve(newTestServer(trigger), "/api/vapi-call")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "PHONE_NUMBER environment variable not set" {
		t.Errorf("unexpected error: %v", body["error"])
	}
	if _, ok := body["details"]; ok {
		t.Error("config errors carry no details")
	}
}

func TestVapiCall_InitiationFailure(t *testing.T) {
	trigger := &stubTrigger{err: &checkin.InitiationError{Slot: slot.Noon, Err: errors.New("api error 400: invalid phone number")}}
	w := serve(newTestServer(trigger), "/api/vapi-call")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Failed to initiate call" {
		t.Errorf("unexpected error: %v", body["error"])
	}
	if body["details"] != "api error 400: invalid phone number" {
		t.Errorf("unexpected details: %v", body["details"])
	}
}

type ctxRecordingPlatform struct {
	listErr   error
	createErr error
	created   int
}

func (p *ctxRecordingPlatform) ListCalls(ctx context.Context, _ int) ([]vapi.Call, error) {
	p.listErr = ctx.Err()
	return nil, nil
}

func (p *ctxRecordingPlatform) CreateCall(ctx context.Context, _ vapi.CreateCallRequest) (*vapi.Call, error) {
	p.created++
	p.createErr = ctx.Err()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &vapi.Call{ID: "call-detached", Status: "queued"}, nil
}

func TestVapiCall_CallerDisconnectDoesNotAbortCall(t *testing.T) {
	platform := &ctxRecordingPlatform{}
	profile := config.DefaultProfile()
	profile.Timezone = "UTC"
	svc := checkin.New(
		config.Config{PhoneNumber: "+15550001111", VapiAPIKey: "k"},
		profile,
		checkin.Deps{
			Platform: platform,
			Content:  fstest.MapFS{},
			Now:      func() time.Time { return time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC) },
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	srv := newTestServer(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("GET", "/api/vapi-call", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if platform.created != 1 {
		t.Fatalf("expected one call created, got %d", platform.created)
	}
	if platform.listErr != nil || platform.createErr != nil {
		t.Errorf("pipeline saw a cancelled context: list=%v create=%v", platform.listErr, platform.createErr)
	}
	if body := decode(t, w); body["callId"] != "call-detached" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestServer_ShutdownEndsStartCleanly(t *testing.T) {
	srv := NewServer(0, &stubTrigger{}, Info{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil after shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
