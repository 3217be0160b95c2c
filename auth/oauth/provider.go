package oauth

import "context"

// Profile is the normalized identity a provider hands back after a
// successful token exchange. Login is the provider-suggested username, when
// the provider has one (GitHub does, Google does not).
type Profile struct {
	Provider  string
	ID        string
	Email     string
	FirstName string
	LastName  string
	Login     string
}

// Provider is one OAuth variant. Variants differ only in endpoints, scopes
// and response shapes; everything downstream of the adapter is
// provider-agnostic.
type Provider interface {
	ID() string
	DisplayName() string
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
	FetchProfile(ctx context.Context, accessToken string) (Profile, error)
}
