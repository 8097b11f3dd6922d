package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/fx"
)

const (
	// DefaultPageDelay paces per-page model calls to stay under free-tier
	// request quotas.
	DefaultPageDelay = 10 * time.Second

	pageSeparator = "\n\n--- PAGE BREAK ---\n\n"
)

// Service runs the extraction pipeline: layout discovery, per-page table
// transcription, harmonization and invoice extraction. All model traffic
// goes through the shared retryer.
type Service struct {
	gen   Generator
	fx    *fx.Normalizer
	retry *Retryer
	log   zerolog.Logger

	pageDelay time.Duration
	sleep     func(time.Duration)
}

// NewService wires a pipeline service around a generator and a currency
// normalizer.
func NewService(gen Generator, norm *fx.Normalizer, log zerolog.Logger) *Service {
	return &Service{
		gen:       gen,
		fx:        norm,
		retry:     NewRetryer(log),
		log:       log,
		pageDelay: DefaultPageDelay,
		sleep:     time.Sleep,
	}
}

// SetPageDelay overrides the pause between per-page model calls.
func (s *Service) SetPageDelay(d time.Duration) {
	s.pageDelay = d
}

// SetRetryPolicy overrides the retry backoff parameters.
func (s *Service) SetRetryPolicy(baseDelay time.Duration, maxRetries int) {
	if baseDelay > 0 {
		s.retry.BaseDelay = baseDelay
	}
	if maxRetries > 0 {
		s.retry.MaxRetries = maxRetries
	}
}

var amountPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseAmount converts a model-emitted amount cell to a float. Commas and
// surrounding text are tolerated; anything without a numeric token is 0.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	tok := amountPattern.FindString(s)
	if tok == "" {
		return 0
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return v
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
