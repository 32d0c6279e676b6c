package dialer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/checkin/internal/slot"
	"github.com/MikeSquared-Agency/checkin/internal/vapi"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingCreator struct {
	req   vapi.CreateCallRequest
	calls int
	id    string
	err   error
}

func (r *recordingCreator) CreateCall(_ context.Context, req vapi.CreateCallRequest) (*vapi.Call, error) {
	r.calls++
	r.req = req
	if r.err != nil {
		return nil, r.err
	}
	return &vapi.Call{ID: r.id, Status: "queued"}, nil
}

func testConfig(s slot.Slot) CallConfiguration {
	return CallConfiguration{
		Recipient:          "+15550001111",
		PhoneNumberID:      "e4511439-4772-4b31-ae08-1bc1f8a7ca5a",
		VoiceProvider:      "11labs",
		VoiceID:            "voice-1",
		Transcriber:        "deepgram",
		ModelProvider:      "openai",
		Model:              "gpt-4o-mini",
		OpeningLine:        "Morning.",
		Instructions:       "Be brief.",
		TerminationPhrases: []string{"Go.", "Get to work.", "Go execute."},
		Slot:               s,
	}
}

func TestDial_Success(t *testing.T) {
	creator := &recordingCreator{id: "call-abc"}
	d := New(creator, discardLogger())

	res, err := d.Dial(context.Background(), testConfig(slot.Noon))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CallID != "call-abc" {
		t.Errorf("expected call id call-abc, got %q", res.CallID)
	}
	if res.Slot != slot.Noon {
		t.Errorf("expected slot noon, got %q", res.Slot)
	}
	if creator.calls != 1 {
		t.Errorf("expected one create call, got %d", creator.calls)
	}
	if creator.req.Metadata["slot"] != "noon" {
		t.Errorf("expected slot metadata on call, got %v", creator.req.Metadata)
	}
	if creator.req.Assistant.Metadata["slot"] != "noon" {
		t.Errorf("expected slot metadata on assistant, got %v", creator.req.Assistant.Metadata)
	}
}

func TestDial_PlatformErrorNotRetried(t *testing.T) {
	creator := &recordingCreator{err: errors.New("api error 400: bad number")}
	d := New(creator, discardLogger())

	_, err := d.Dial(context.Background(), testConfig(slot.Morning))
	if err == nil {
		t.Fatal("expected error")
	}
	if creator.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", creator.calls)
	}
}

func TestDial_InvalidSlot(t *testing.T) {
	creator := &recordingCreator{id: "x"}
	if _, err := New(creator, discardLogger()).Dial(context.Background(), testConfig("")); err == nil {
		t.Fatal("expected error for invalid slot")
	}
	if creator.calls != 0 {
		t.Error("expected no platform call for invalid slot")
	}
}

func TestRequest_MapsAllFields(t *testing.T) {
	cfg := testConfig(slot.Evening)
	req := Request(cfg)

	if req.PhoneNumberID != cfg.PhoneNumberID || req.Customer.Number != cfg.Recipient {
		t.Errorf("unexpected routing fields: %+v", req)
	}
	a := req.Assistant
	if a.Voice.Provider != "11labs" || a.Voice.VoiceID != "voice-1" {
		t.Errorf("unexpected voice: %+v", a.Voice)
	}
	if a.Transcriber.Provider != "deepgram" {
		t.Errorf("unexpected transcriber: %+v", a.Transcriber)
	}
	if a.FirstMessage != "Morning." {
		t.Errorf("unexpected first message %q", a.FirstMessage)
	}
	if a.Model.Provider != "openai" || a.Model.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %+v", a.Model)
	}
	if len(a.Model.Messages) != 1 || a.Model.Messages[0].Role != "system" || a.Model.Messages[0].Content != "Be brief." {
		t.Errorf("unexpected model messages: %+v", a.Model.Messages)
	}
	if len(a.EndCallPhrases) != 3 || a.EndCallPhrases[2] != "Go execute." {
		t.Errorf("unexpected end call phrases: %v", a.EndCallPhrases)
	}

	cfg.TerminationPhrases[0] = "changed"
	if a.EndCallPhrases[0] != "Go." {
		t.Error("request should not alias the configuration's phrase slice")
	}
}

func TestDial_AgainstPlatformClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		meta, _ := body["metadata"].(map[string]any)
		if meta["slot"] != "evening" {
			t.Errorf("expected slot metadata in wire body, got %v", body["metadata"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"call-wire","status":"queued"}`))
	}))
	defer server.Close()

	d := New(vapi.NewClient("k", server.URL, time.Second), discardLogger())
	res, err := d.Dial(context.Background(), testConfig(slot.Evening))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CallID != "call-wire" || res.Slot != slot.Evening {
		t.Errorf("unexpected result: %+v", res)
	}
}
