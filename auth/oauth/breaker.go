package oauth

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// breakerProvider shields the gateway from a misbehaving provider: once the
// token or profile endpoint fails repeatedly, further login attempts fail
// fast until the breaker half-opens. Auth URL construction is local and
// never trips.
type breakerProvider struct {
	Provider

	exchange *gobreaker.CircuitBreaker[string]
	profile  *gobreaker.CircuitBreaker[Profile]
}

func WithBreaker(p Provider) Provider {
	return &breakerProvider{
		Provider: p,
		exchange: gobreaker.NewCircuitBreaker[string](breakerSettings(p.ID() + ":exchange")),
		profile:  gobreaker.NewCircuitBreaker[Profile](breakerSettings(p.ID() + ":profile")),
	}
}

func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name: name,

		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s → %s", name, from, to)
		},
	}
}

func (p *breakerProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	return p.exchange.Execute(func() (string, error) {
		return p.Provider.ExchangeCode(ctx, code)
	})
}

func (p *breakerProvider) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	return p.profile.Execute(func() (Profile, error) {
		return p.Provider.FetchProfile(ctx, accessToken)
	})
}
