package commitment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/checkin/internal/anthropic"
)

const maxTokens = 150

// Completer runs a single LLM completion.
type Completer interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

// Result is the extracted commitment. When Degraded is set, Text is the
// source transcript unchanged and Reason says why extraction was skipped.
type Result struct {
	Text     string
	Degraded bool
	Reason   string
}

type Extractor struct {
	llm    Completer
	logger *slog.Logger
}

// New returns an extractor. A nil llm means no credential is configured and
// every call falls back to the transcript.
func New(llm Completer, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract reduces a call transcript to the recipient's own commitment.
// It never fails: any problem yields the transcript itself.
func (e *Extractor) Extract(ctx context.Context, transcript string) Result {
	if e.llm == nil {
		return e.fallback(transcript, "no extraction credential configured", nil)
	}
	if strings.TrimSpace(transcript) == "" {
		return e.fallback(transcript, "empty transcript", nil)
	}

	messages := []anthropic.Message{
		{Role: "user", Content: fmt.Sprintf(extractionUserPrompt, transcript)},
	}

	raw, err := e.llm.Complete(ctx, extractionSystemPrompt, messages, maxTokens)
	if err != nil {
		return e.fallback(transcript, "extraction call failed", err)
	}

	text := clean(raw)
	if text == "" {
		return e.fallback(transcript, "empty extraction response", nil)
	}

	e.logger.Info("commitment extracted",
		"transcript_len", len(transcript),
		"commitment_len", len(text),
	)
	return Result{Text: text}
}

func (e *Extractor) fallback(transcript, reason string, err error) Result {
	attrs := []any{"reason", reason}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	e.logger.Warn("using raw transcript as commitment", attrs...)
	return Result{Text: transcript, Degraded: true, Reason: reason}
}

// clean trims whitespace and the quote marks models like to wrap answers in,
// since the opening line adds its own.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"“”")
	return strings.TrimSpace(s)
}
