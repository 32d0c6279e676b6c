package dialer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/checkin/internal/slot"
	"github.com/MikeSquared-Agency/checkin/internal/vapi"
)

// CallCreator creates outbound calls on the voice-call platform.
type CallCreator interface {
	CreateCall(ctx context.Context, req vapi.CreateCallRequest) (*vapi.Call, error)
}

// CallConfiguration is the complete payload for one outbound call.
type CallConfiguration struct {
	Recipient          string
	PhoneNumberID      string
	VoiceProvider      string
	VoiceID            string
	Transcriber        string
	ModelProvider      string
	Model              string
	OpeningLine        string
	Instructions       string
	TerminationPhrases []string
	Slot               slot.Slot
}

// CallResult is what the invoker gets back for a placed call.
type CallResult struct {
	CallID string    `json:"callId"`
	Slot   slot.Slot `json:"slot"`
}

type Dialer struct {
	platform CallCreator
	logger   *slog.Logger
}

func New(platform CallCreator, logger *slog.Logger) *Dialer {
	return &Dialer{platform: platform, logger: logger}
}

// Request maps a configuration onto the platform's create-call body. The slot
// is attached as metadata on both the call and the assistant so later
// same-day aggregation can find it.
func Request(cfg CallConfiguration) vapi.CreateCallRequest {
	meta := map[string]string{vapi.MetadataSlotKey: string(cfg.Slot)}
	phrases := make([]string, len(cfg.TerminationPhrases))
	copy(phrases, cfg.TerminationPhrases)

	return vapi.CreateCallRequest{
		PhoneNumberID: cfg.PhoneNumberID,
		Customer:      vapi.Customer{Number: cfg.Recipient},
		Assistant: vapi.Assistant{
			Voice:        vapi.Voice{Provider: cfg.VoiceProvider, VoiceID: cfg.VoiceID},
			FirstMessage: cfg.OpeningLine,
			Transcriber:  vapi.Transcriber{Provider: cfg.Transcriber},
			Model: vapi.Model{
				Provider: cfg.ModelProvider,
				Model:    cfg.Model,
				Messages: []vapi.Message{{Role: "system", Content: cfg.Instructions}},
			},
			EndCallPhrases: phrases,
			Metadata:       meta,
		},
		Metadata: map[string]string{vapi.MetadataSlotKey: string(cfg.Slot)},
	}
}

// Dial submits the call once. There is no retry: the next scheduled slot is
// the recovery path for a missed call.
func (d *Dialer) Dial(ctx context.Context, cfg CallConfiguration) (CallResult, error) {
	if !cfg.Slot.Valid() {
		return CallResult{}, fmt.Errorf("dial: invalid slot %q", cfg.Slot)
	}

	call, err := d.platform.CreateCall(ctx, Request(cfg))
	if err != nil {
		return CallResult{}, fmt.Errorf("create call: %w", err)
	}

	d.logger.Info("call created", "call_id", call.ID, "slot", cfg.Slot, "status", call.Status)
	return CallResult{CallID: call.ID, Slot: cfg.Slot}, nil
}
