package bookkeeper

import (
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrCategoryCycle = errors.New("category cannot be its own parent")
	ErrUnknownPeriod = errors.New("unknown budget period")
)

// Clock supplies the current time for defaults such as an expense with no
// date or the start of a new budget.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Service implements the bookkeeping operations on top of the model
// repositories. Each method is a short sequence of independent repository
// calls; a failure part way leaves earlier calls applied.
type Service struct {
	repos  *Repositories
	clock  Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger for mutation records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service over repos.
func New(repos *Repositories, opts ...Option) *Service {
	s := &Service{
		repos:  repos,
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories returns the underlying repositories.
func (s *Service) Repositories() *Repositories { return s.repos }

var lower = cases.Lower(language.Und)

// Capitalize trims name, title-cases its first letter and lower-cases the
// rest: "gROCERIES " becomes "Groceries".
func Capitalize(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return string(unicode.ToTitle(r)) + lower.String(name[size:])
}
