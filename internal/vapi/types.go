package vapi

import "time"

// MetadataSlotKey is the call metadata key carrying the check-in slot tag.
const MetadataSlotKey = "slot"

// CreateCallRequest is the body of POST /call.
type CreateCallRequest struct {
	PhoneNumberID string            `json:"phoneNumberId"`
	Customer      Customer          `json:"customer"`
	Assistant     Assistant         `json:"assistant"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type Customer struct {
	Number string `json:"number"`
}

// Assistant is the transient assistant definition for a single call.
type Assistant struct {
	Voice          Voice             `json:"voice"`
	FirstMessage   string            `json:"firstMessage"`
	Transcriber    Transcriber       `json:"transcriber"`
	Model          Model             `json:"model"`
	EndCallPhrases []string          `json:"endCallPhrases,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type Voice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type Transcriber struct {
	Provider string `json:"provider"`
}

type Model struct {
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Call is the subset of the platform's call object this service reads.
type Call struct {
	ID         string         `json:"id"`
	Status     string         `json:"status,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	Transcript string         `json:"transcript,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Artifact   *struct {
		Transcript string `json:"transcript,omitempty"`
	} `json:"artifact,omitempty"`
	Assistant *struct {
		Metadata map[string]any `json:"metadata,omitempty"`
	} `json:"assistant,omitempty"`
}

// SlotTag returns the slot tag attached at creation, checking the call
// metadata first and the transient assistant metadata second.
func (c Call) SlotTag() string {
	if v, _ := c.Metadata[MetadataSlotKey].(string); v != "" {
		return v
	}
	if c.Assistant != nil {
		v, _ := c.Assistant.Metadata[MetadataSlotKey].(string)
		return v
	}
	return ""
}

// TranscriptText returns the call transcript, preferring the top-level field.
func (c Call) TranscriptText() string {
	if c.Transcript != "" {
		return c.Transcript
	}
	if c.Artifact != nil {
		return c.Artifact.Transcript
	}
	return ""
}
