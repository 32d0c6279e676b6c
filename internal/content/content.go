package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
)

const (
	QuotesFile             = "quotes.json"
	CoachingTranscriptFile = "coaching-transcript.txt"

	// FallbackQuote is used whenever the bundled quotes cannot be read.
	FallbackQuote = "The best time to plant a tree was 20 years ago. The second best time is now."
)

// QuoteResult holds the quotes available for this request.
type QuoteResult struct {
	Quotes   []string
	Degraded bool
	Err      error
}

// TextResult holds a bundled text document; Text is empty when Degraded.
type TextResult struct {
	Text     string
	Degraded bool
	Err      error
}

// Store reads bundled static content on every call, so edits to the files
// are picked up without a restart.
type Store struct {
	fsys   fs.FS
	logger *slog.Logger
}

func NewStore(fsys fs.FS, logger *slog.Logger) *Store {
	return &Store{fsys: fsys, logger: logger}
}

// Quotes loads the JSON array of quote strings. Blank entries are dropped.
func (s *Store) Quotes() QuoteResult {
	quotes, err := s.readQuotes()
	if err != nil {
		s.logger.Warn("quotes unavailable, using fallback quote", "error", err)
		return QuoteResult{Quotes: []string{FallbackQuote}, Degraded: true, Err: err}
	}
	return QuoteResult{Quotes: quotes}
}

func (s *Store) readQuotes() ([]string, error) {
	data, err := fs.ReadFile(s.fsys, QuotesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", QuotesFile, err)
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", QuotesFile, err)
	}
	quotes := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			quotes = append(quotes, q)
		}
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%s has no quotes", QuotesFile)
	}
	return quotes, nil
}

// RandomQuote loads the quotes and picks one with intn, which must return a
// uniform value in [0, n). math/rand/v2.IntN fits.
func (s *Store) RandomQuote(intn func(n int) int) (string, bool) {
	res := s.Quotes()
	return res.Quotes[intn(len(res.Quotes))], res.Degraded
}

// CoachingTranscript loads the bundled sales-coaching transcript.
func (s *Store) CoachingTranscript() TextResult {
	data, err := fs.ReadFile(s.fsys, CoachingTranscriptFile)
	if err != nil {
		s.logger.Warn("coaching transcript unavailable", "error", err)
		return TextResult{Degraded: true, Err: fmt.Errorf("read %s: %w", CoachingTranscriptFile, err)}
	}
	return TextResult{Text: strings.TrimSpace(string(data))}
}
