// ABOUTME: Persistence and validation of operator-chosen execution options
// ABOUTME: Defensive loading: anything malformed silently becomes the defaults
package options

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/jonboulle/clockwork"
	"github.com/natefinch/atomic"

	"github.com/olivinha/console/models"
)

// The filename is versioned so a future shape change can start fresh
// without migrating old payloads.
const optionsFileName = "execution_options_v1.json"

var (
	// ErrStartDateInvalid is a missing or malformed start date.
	ErrStartDateInvalid = errors.New("start date must be a valid YYYY-MM-DD date")

	// ErrStartDateFuture is a syntactically valid start date after today.
	ErrStartDateFuture = errors.New("start date cannot be in the future")
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Defaults returns the factory execution options.
func Defaults() models.ExecutionOptions {
	return models.ExecutionOptions{
		StartDate: "2026-01-15",
		ExcludeCategories: []string{
			"Same person transfer",
			"Credit card payment",
		},
	}
}

// Store reads and writes the persisted execution options.
type Store struct {
	path  string
	clock clockwork.Clock
}

// NewStore places the options file in the XDG data directory.
func NewStore() *Store {
	return NewStoreAt(filepath.Join(xdg.DataHome, "olivia-console", optionsFileName), clockwork.NewRealClock())
}

// NewStoreAt is the injectable constructor used by tests.
func NewStoreAt(path string, clock clockwork.Clock) *Store {
	return &Store{path: path, clock: clock}
}

// Load returns the persisted options, or the defaults when the file is
// absent, unreadable, or fails normalization. It never returns an error;
// a broken saved payload must not block the operator.
func (s *Store) Load() models.ExecutionOptions {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Defaults()
	}

	var parsed models.ExecutionOptions
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Defaults()
	}

	return Normalize(parsed)
}

// Save persists the options atomically. Failures are swallowed: saving is
// a convenience and must never block the action that triggered it.
func (s *Store) Save(opts models.ExecutionOptions) {
	encoded, err := json.Marshal(Normalize(opts))
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}
	_ = atomic.WriteFile(s.path, strings.NewReader(string(encoded)))
}

// Reset restores the defaults, both in the returned value and on disk.
func (s *Store) Reset() models.ExecutionOptions {
	defaults := Defaults()
	s.Save(defaults)
	return defaults
}

// Normalize coerces arbitrary input into valid options. An unparseable
// start date falls back to the default one; category entries keep only
// non-empty trimmed strings.
func Normalize(raw models.ExecutionOptions) models.ExecutionOptions {
	normalized := Defaults()

	if IsValidISODate(raw.StartDate) {
		normalized.StartDate = raw.StartDate
	}

	if raw.ExcludeCategories != nil {
		categories := make([]string, 0, len(raw.ExcludeCategories))
		for _, category := range raw.ExcludeCategories {
			trimmed := strings.TrimSpace(category)
			if trimmed != "" {
				categories = append(categories, trimmed)
			}
		}
		normalized.ExcludeCategories = categories
	}

	return normalized
}

// IsValidISODate requires the YYYY-MM-DD shape and a round trip through
// calendar parsing back to the identical string, so 2021-02-30 and
// zero-padded surprises are both rejected.
func IsValidISODate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return false
	}
	return parsed.Format("2006-01-02") == value
}

// ValidateForSubmission checks that a run may be submitted with these
// options. The two failure modes stay distinct so the UI can point at the
// right field message. State is never mutated.
func (s *Store) ValidateForSubmission(opts models.ExecutionOptions) error {
	if !IsValidISODate(opts.StartDate) {
		return ErrStartDateInvalid
	}

	startDate, err := time.Parse("2006-01-02", opts.StartDate)
	if err != nil {
		return ErrStartDateInvalid
	}

	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if startDate.After(today) {
		return ErrStartDateFuture
	}

	return nil
}
