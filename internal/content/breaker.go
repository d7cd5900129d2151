package content

import (
	"context"
	"errors"
	"time"

	"skillpath/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerSettings controls when a source is taken out of rotation.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type guardedSource struct {
	Source
	cb *gobreaker.CircuitBreaker
}

// WithBreaker wraps src so that a failing upstream fails fast instead of
// holding every feed request until its timeout.
func WithBreaker(src Source, s BreakerSettings, logger zerolog.Logger) Source {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        src.ID(),
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("Content source breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the upstream's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &guardedSource{Source: src, cb: cb}
}

func (g *guardedSource) FetchArticles(ctx context.Context, tag string, limit, page int) ([]model.Article, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.Source.FetchArticles(ctx, tag, limit, page)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.Article), nil
}
