package sentiment

import (
	"errors"
	"fmt"
	"time"
)

// Backend names.
const (
	BackendLexicon  = "lexicon"
	BackendPolarity = "polarity"
	BackendStars    = "stars"
)

// ErrBackendUnavailable is matched by every error reporting that a backend
// cannot be constructed or reached.
var ErrBackendUnavailable = errors.New("sentiment backend unavailable")

// UnavailableError explains why a backend cannot be used.
type UnavailableError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s backend unavailable: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s backend unavailable: %s", e.Backend, e.Reason)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrBackendUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }

// Config carries the knobs backends read.
type Config struct {
	StarsEndpoint string
	StarsModel    string
	StarsAPIToken string
	HTTPTimeout   time.Duration
	RetryMax      int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	RateLimitRPS  float64
}

// Factory builds a Backend, returning an *UnavailableError when it cannot.
type Factory func(Config) (Backend, error)

// Info describes a registered backend.
type Info struct {
	Name        string
	Title       string
	Description string
	// Subjectivity is set for backends that fill Result.Subjectivity.
	Subjectivity bool
	// Remote backends call out over the network.
	Remote bool
}

type entry struct {
	info    Info
	factory Factory
}

var registry []entry

// Register adds a backend. Registration order is menu order.
func Register(info Info, f Factory) {
	registry = append(registry, entry{info: info, factory: f})
}

// Backends lists registered backends in menu order.
func Backends() []Info {
	out := make([]Info, len(registry))
	for i, e := range registry {
		out[i] = e.info
	}
	return out
}

// Lookup returns the Info for a backend name.
func Lookup(name string) (Info, bool) {
	for _, e := range registry {
		if e.info.Name == name {
			return e.info, true
		}
	}
	return Info{}, false
}

// Get builds the named backend.
func Get(name string, cfg Config) (Backend, error) {
	for _, e := range registry {
		if e.info.Name == name {
			return e.factory(cfg)
		}
	}
	return nil, fmt.Errorf("unknown sentiment backend %q", name)
}

// Available reports whether the named backend can be built with cfg. It does
// not contact remote services.
func Available(name string, cfg Config) (bool, error) {
	_, err := Get(name, cfg)
	return err == nil, err
}

func init() {
	Register(Info{
		Name:        BackendLexicon,
		Title:       "Lexicon (compound valence)",
		Description: "rule-based valence lexicon; positive at compound >= 0.05, negative at <= -0.05",
	}, func(Config) (Backend, error) { return NewLexicon(), nil })
	Register(Info{
		Name:         BackendPolarity,
		Title:        "Polarity (with subjectivity)",
		Description:  "adjective polarity lexicon; sign of the mean polarity decides the label",
		Subjectivity: true,
	}, func(Config) (Backend, error) { return NewPolarity(), nil })
	Register(Info{
		Name:        BackendStars,
		Title:       "Star rating model",
		Description: "remote 1-5 star classifier; 4-5 positive, 3 neutral, 1-2 negative",
		Remote:      true,
	}, func(c Config) (Backend, error) {
		if c.HTTPTimeout <= 0 {
			c.HTTPTimeout = 30 * time.Second
		}
		if c.RetryMax <= 0 {
			c.RetryMax = 3
		}
		if c.BaseDelay <= 0 {
			c.BaseDelay = 500 * time.Millisecond
		}
		if c.MaxDelay <= 0 {
			c.MaxDelay = 4 * time.Second
		}
		return NewStarsClient(c)
	})
}
