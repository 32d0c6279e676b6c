package checkin

import (
	"context"
	"time"

	"github.com/MikeSquared-Agency/checkin/internal/anthropic"
	"github.com/MikeSquared-Agency/checkin/internal/commitment"
	"github.com/MikeSquared-Agency/checkin/internal/metrics"
	"github.com/MikeSquared-Agency/checkin/internal/vapi"
)

type instrumentedPlatform struct {
	Platform
}

func (p instrumentedPlatform) ListCalls(ctx context.Context, limit int) ([]vapi.Call, error) {
	start := time.Now()
	calls, err := p.Platform.ListCalls(ctx, limit)
	metrics.RecordExternalCall("vapi_list_calls", err, time.Since(start))
	return calls, err
}

func (p instrumentedPlatform) CreateCall(ctx context.Context, req vapi.CreateCallRequest) (*vapi.Call, error) {
	start := time.Now()
	call, err := p.Platform.CreateCall(ctx, req)
	metrics.RecordExternalCall("vapi_create_call", err, time.Since(start))
	return call, err
}

type instrumentedCompleter struct {
	commitment.Completer
}

func (c instrumentedCompleter) Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error) {
	start := time.Now()
	text, err := c.Completer.Complete(ctx, system, messages, maxTokens)
	metrics.RecordExternalCall("anthropic_messages", err, time.Since(start))
	return text, err
}
