package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/checkin/internal/prompt"
	"github.com/MikeSquared-Agency/checkin/internal/slot"
)

// Profile is the call profile: everything about how calls are placed and
// scripted that is not a secret. It is loaded once at startup and treated as
// read-only afterwards.
type Profile struct {
	Timezone           string            `yaml:"timezone"`
	TriggerHours       map[string]int    `yaml:"trigger_hours"`
	DefaultSlot        string            `yaml:"default_slot"`
	PhoneNumberID      string            `yaml:"phone_number_id"`
	Voice              VoiceProfile      `yaml:"voice"`
	Transcriber        string            `yaml:"transcriber"`
	Model              ModelProfile      `yaml:"model"`
	OpeningTemplates   map[string]string `yaml:"opening_templates"`
	FollowUpTemplate   string            `yaml:"follow_up_template"`
	TerminationPhrases []string          `yaml:"termination_phrases"`
	HistoryLimit       int               `yaml:"history_limit"`

	loc *time.Location
}

type VoiceProfile struct {
	Provider string `yaml:"provider"`
	VoiceID  string `yaml:"voice_id"`
}

type ModelProfile struct {
	Provider string `yaml:"provider"`
	Name     string `yaml:"name"`
}

func DefaultProfile() Profile {
	return Profile{
		Timezone: "America/New_York",
		TriggerHours: map[string]int{
			string(slot.Morning): 7,
			string(slot.Noon):    13,
			string(slot.Evening): 21,
		},
		DefaultSlot:   string(slot.Morning),
		PhoneNumberID: "e4511439-4772-4b31-ae08-1bc1f8a7ca5a",
		Voice:         VoiceProfile{Provider: "11labs", VoiceID: "AMagyyApPEVuxcHAR8xR"},
		Transcriber:   "deepgram",
		Model:         ModelProfile{Provider: "openai", Name: "gpt-4o-mini"},
		OpeningTemplates: map[string]string{
			string(slot.Morning): "Morning. This is your 7am check-in. What's the one thing that has to get done today?",
			string(slot.Noon):    "This is your 1pm check-in. Where are you on today's priority?",
			string(slot.Evening): "This is your 9pm check-in. Time to score the day. How did you execute?",
		},
		FollowUpTemplate:   `This morning you said: "` + prompt.CommitmentPlaceholder + `". Did you do it?`,
		TerminationPhrases: []string{"Go.", "Get to work.", "Go execute."},
		HistoryLimit:       20,
	}
}

// LoadProfile returns the default profile, overlaid with the YAML file at
// path when one is given. Keys absent from the file keep their defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Profile{}, fmt.Errorf("read profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile: %w", err)
		}
	}
	if err := p.validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %q: %w", path, err)
	}
	return p, nil
}

func (p *Profile) validate() error {
	var errs []error

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	p.loc = loc

	seen := make(map[int]string)
	for _, s := range slot.All() {
		h, ok := p.TriggerHours[string(s)]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("trigger_hours: missing %s", s))
		case h < 0 || h > 23:
			errs = append(errs, fmt.Errorf("trigger_hours: %s hour %d out of range", s, h))
		case seen[h] != "":
			errs = append(errs, fmt.Errorf("trigger_hours: %s and %s share hour %d", seen[h], s, h))
		default:
			seen[h] = string(s)
		}
		if strings.TrimSpace(p.OpeningTemplates[string(s)]) == "" {
			errs = append(errs, fmt.Errorf("opening_templates: missing %s", s))
		}
	}
	for k := range p.TriggerHours {
		if _, err := slot.Parse(k); err != nil {
			errs = append(errs, fmt.Errorf("trigger_hours: %w", err))
		}
	}

	if _, err := slot.Parse(p.DefaultSlot); err != nil {
		errs = append(errs, fmt.Errorf("default_slot: %w", err))
	}
	if _, err := uuid.Parse(p.PhoneNumberID); err != nil {
		errs = append(errs, fmt.Errorf("phone_number_id: %w", err))
	}
	if p.Voice.Provider == "" || p.Voice.VoiceID == "" {
		errs = append(errs, errors.New("voice: provider and voice_id are required"))
	}
	if p.Transcriber == "" {
		errs = append(errs, errors.New("transcriber is required"))
	}
	if p.Model.Provider == "" || p.Model.Name == "" {
		errs = append(errs, errors.New("model: provider and name are required"))
	}
	if !strings.Contains(p.FollowUpTemplate, prompt.CommitmentPlaceholder) {
		errs = append(errs, fmt.Errorf("follow_up_template must contain %s", prompt.CommitmentPlaceholder))
	}
	if len(p.TerminationPhrases) == 0 {
		errs = append(errs, errors.New("termination_phrases: at least one phrase is required"))
	}
	for i, phrase := range p.TerminationPhrases {
		if strings.TrimSpace(phrase) == "" {
			errs = append(errs, fmt.Errorf("termination_phrases[%d] is blank", i))
		}
	}
	if p.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", p.HistoryLimit))
	}

	return errors.Join(errs...)
}

// Location is the civil timezone slots and calendar days are computed in.
func (p Profile) Location() *time.Location {
	if p.loc == nil {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
		return time.UTC
	}
	return p.loc
}

// Hours returns the trigger hour per slot.
func (p Profile) Hours() slot.Hours {
	h := make(slot.Hours, len(p.TriggerHours))
	for k, v := range p.TriggerHours {
		h[slot.Slot(k)] = v
	}
	return h
}

// Default is the slot used when the clock matches no trigger hour.
func (p Profile) Default() slot.Slot {
	s, err := slot.Parse(p.DefaultSlot)
	if err != nil {
		return slot.Morning
	}
	return s
}

// Opening returns the static opening line for s.
func (p Profile) Opening(s slot.Slot) string {
	return p.OpeningTemplates[string(s)]
}

// Phrases returns a copy of the termination phrase set.
func (p Profile) Phrases() []string {
	out := make([]string, len(p.TerminationPhrases))
	copy(out, p.TerminationPhrases)
	return out
}
