package checkin

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/checkin/internal/commitment"
	"github.com/MikeSquared-Agency/checkin/internal/config"
	"github.com/MikeSquared-Agency/checkin/internal/content"
	"github.com/MikeSquared-Agency/checkin/internal/dialer"
	"github.com/MikeSquared-Agency/checkin/internal/hermes"
	"github.com/MikeSquared-Agency/checkin/internal/history"
	"github.com/MikeSquared-Agency/checkin/internal/metrics"
	"github.com/MikeSquared-Agency/checkin/internal/prompt"
	"github.com/MikeSquared-Agency/checkin/internal/slot"
)

// Stage names reported in Result.Degraded and the degraded-stage metric.
const (
	StageHistory    = "history"
	StageCommitment = "commitment"
	StageQuotes     = "quotes"
	StageReference  = "coaching_reference"
)

// Platform is the voice-call platform as the pipeline uses it.
type Platform interface {
	history.CallLister
	dialer.CallCreator
}

// Publisher receives call events. Optional.
type Publisher interface {
	PublishCallEvent(evt hermes.CallEvent) error
}

// Deps are the collaborators a Service is built from. LLM and Publisher may
// be nil. Now and IntN default to the wall clock and math/rand/v2.
type Deps struct {
	Platform  Platform
	LLM       commitment.Completer
	Content   fs.FS
	Publisher Publisher
	Now       func() time.Time
	IntN      func(n int) int
}

// Request is one trigger invocation. A zero Slot means resolve from the clock.
type Request struct {
	Slot slot.Slot
}

// Result describes a successfully initiated call.
type Result struct {
	TriggerID     string
	Call          dialer.CallResult
	Configuration dialer.CallConfiguration
	Commitment    string
	Degraded      []string
}

// ConfigError reports a required setting that is missing. Nothing external
// has been contacted when it is returned.
type ConfigError struct {
	Var string
}

func (e *ConfigError) Error() string {
	return e.Var + " environment variable not set"
}

// InitiationError wraps a rejected or failed call submission.
type InitiationError struct {
	Slot slot.Slot
	Err  error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("initiate %s call: %v", e.Slot, e.Err)
}

func (e *InitiationError) Unwrap() error { return e.Err }

type Service struct {
	cfg     config.Config
	profile config.Profile

	fetcher   *history.Fetcher
	extractor *commitment.Extractor
	content   *content.Store
	composer  *prompt.Composer
	dialer    *dialer.Dialer
	publisher Publisher

	now    func() time.Time
	intn   func(n int) int
	logger *slog.Logger
}

func New(cfg config.Config, profile config.Profile, deps Deps, logger *slog.Logger) *Service {
	platform := instrumentedPlatform{deps.Platform}

	var llm commitment.Completer
	if deps.LLM != nil {
		llm = instrumentedCompleter{deps.LLM}
	}

	openings := make(map[slot.Slot]string, len(slot.All()))
	for _, s := range slot.All() {
		openings[s] = profile.Opening(s)
	}

	s := &Service{
		cfg:       cfg,
		profile:   profile,
		fetcher:   history.NewFetcher(platform, profile.Location(), profile.HistoryLimit, logger),
		extractor: commitment.New(llm, logger),
		content:   content.NewStore(deps.Content, logger),
		composer: prompt.NewComposer(prompt.Templates{
			Openings:           openings,
			FollowUp:           profile.FollowUpTemplate,
			TerminationPhrases: profile.Phrases(),
		}),
		dialer:    dialer.New(platform, logger),
		publisher: deps.Publisher,
		now:       deps.Now,
		intn:      deps.IntN,
		logger:    logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.intn == nil {
		s.intn = rand.IntN
	}
	return s
}

// Trigger runs the pipeline once and places one call.
func (s *Service) Trigger(ctx context.Context, req Request) (Result, error) {
	if err := s.checkConfig(); err != nil {
		s.logger.Error("check-in not configured", "error", err)
		metrics.RecordTrigger("unresolved", "config_error")
		return Result{}, err
	}

	res := Result{TriggerID: uuid.NewString()}
	logger := s.logger.With("trigger_id", res.TriggerID)
	now := s.now()

	current := req.Slot
	if current == "" {
		current = s.resolve(now, logger)
	} else if !current.Valid() {
		return Result{}, fmt.Errorf("invalid slot %q", current)
	}
	logger = logger.With("slot", current)

	day := s.fetcher.SameDay(ctx, now)
	if day.Degraded {
		res.degrade(StageHistory)
	}
	daySlots := history.Aggregate(day.Records)

	if current != slot.Morning {
		if morning, ok := daySlots.Transcript(slot.Morning); ok {
			extracted := s.extractor.Extract(ctx, morning)
			if extracted.Degraded {
				res.degrade(StageCommitment)
			}
			res.Commitment = extracted.Text
		}
	}

	var quote string
	if current == slot.Evening {
		var degraded bool
		quote, degraded = s.content.RandomQuote(s.intn)
		if degraded {
			res.degrade(StageQuotes)
		}
	}

	reference := s.content.CoachingTranscript()
	if reference.Degraded {
		res.degrade(StageReference)
	}

	res.Configuration = dialer.CallConfiguration{
		Recipient:     s.cfg.PhoneNumber,
		PhoneNumberID: s.profile.PhoneNumberID,
		VoiceProvider: s.profile.Voice.Provider,
		VoiceID:       s.profile.Voice.VoiceID,
		Transcriber:   s.profile.Transcriber,
		ModelProvider: s.profile.Model.Provider,
		Model:         s.profile.Model.Name,
		OpeningLine:   s.composer.OpeningLine(current, res.Commitment),
		Instructions: s.composer.SystemInstructions(prompt.Input{
			Slot:              current,
			Day:               daySlots,
			Commitment:        res.Commitment,
			Quote:             quote,
			CoachingReference: reference.Text,
		}),
		TerminationPhrases: s.composer.TerminationPhrases(),
		Slot:               current,
	}

	call, err := s.dialer.Dial(ctx, res.Configuration)
	if err != nil {
		initErr := &InitiationError{Slot: current, Err: err}
		logger.Error("call initiation failed", "error", err, "degraded", res.Degraded)
		metrics.RecordTrigger(string(current), "failed")
		s.publish(logger, hermes.CallEvent{
			TriggerID: res.TriggerID,
			Slot:      string(current),
			Degraded:  res.Degraded,
			Error:     err.Error(),
			Timestamp: now.UTC(),
		})
		return Result{}, initErr
	}
	res.Call = call

	logger.Info("check-in call initiated",
		"call_id", call.CallID,
		"earlier_slots", len(daySlots),
		"has_commitment", res.Commitment != "",
		"degraded", res.Degraded,
	)
	metrics.RecordTrigger(string(current), "initiated")
	s.publish(logger, hermes.CallEvent{
		TriggerID: res.TriggerID,
		Slot:      string(current),
		CallID:    call.CallID,
		Degraded:  res.Degraded,
		Timestamp: now.UTC(),
	})
	return res, nil
}

func (s *Service) checkConfig() error {
	if s.cfg.PhoneNumber == "" {
		return &ConfigError{Var: "PHONE_NUMBER"}
	}
	if s.cfg.VapiAPIKey == "" {
		return &ConfigError{Var: "VAPI_API_KEY"}
	}
	return nil
}

func (s *Service) resolve(now time.Time, logger *slog.Logger) slot.Slot {
	if current, ok := slot.Resolve(now, s.profile.Location(), s.profile.Hours()); ok {
		return current
	}
	fallback := s.profile.Default()
	logger.Warn("trigger outside scheduled hours, using default slot",
		"local_time", now.In(s.profile.Location()).Format(time.RFC3339),
		"default_slot", fallback,
	)
	return fallback
}

func (s *Service) publish(logger *slog.Logger, evt hermes.CallEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCallEvent(evt); err != nil {
		logger.Warn("failed to publish call event", "subject", evt.Subject(), "error", err)
	}
}

func (r *Result) degrade(stage string) {
	r.Degraded = append(r.Degraded, stage)
	metrics.RecordDegraded(stage)
}
