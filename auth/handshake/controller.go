// Package handshake orchestrates one OAuth login attempt: minting the state
// token and authorization URL on the way out, then validating the state,
// trading the code for a token, fetching the profile and resolving the local
// account on the way back. Nothing is persisted between the two requests
// except the state token itself.
package handshake

import (
	"context"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/account"
	"github.com/nlysenko/datahub-gateway/auth/oauth"
	"github.com/nlysenko/datahub-gateway/auth/state"
	"github.com/nlysenko/datahub-gateway/auth/types"
)

type registration struct {
	provider oauth.Provider
	enabled  bool
}

type Controller struct {
	providers map[string]registration
	order     []string
	states    state.Store
	resolver  *account.Resolver
}

func NewController(states state.Store, resolver *account.Resolver) *Controller {
	return &Controller{
		providers: map[string]registration{},
		states:    states,
		resolver:  resolver,
	}
}

// RegisterProvider adds a provider variant. Disabled providers stay
// registered so a callback for one fails as disabled rather than unknown.
func (c *Controller) RegisterProvider(p oauth.Provider, enabled bool) {
	if _, ok := c.providers[p.ID()]; !ok {
		c.order = append(c.order, p.ID())
	}
	c.providers[p.ID()] = registration{provider: p, enabled: enabled}
}

func (c *Controller) lookup(providerID string) (oauth.Provider, error) {
	reg, ok := c.providers[providerID]
	if !ok {
		return nil, apperr.ErrProviderNotFound
	}
	if !reg.enabled {
		return nil, apperr.ErrProviderDisabled
	}
	return reg.provider, nil
}

// Initiate starts a login attempt: a fresh single-use state token is bound
// to the caller's redirect target and embedded in the provider's
// authorization URL.
func (c *Controller) Initiate(ctx context.Context, providerID, redirect string) (string, error) {
	provider, err := c.lookup(providerID)
	if err != nil {
		return "", err
	}

	token, err := c.states.Issue(ctx, redirect)
	if err != nil {
		return "", err
	}

	return provider.AuthURL(token), nil
}

// Listings returns one entry per enabled provider, each with a freshly
// initiated authorization URL.
func (c *Controller) Listings(ctx context.Context, redirect string) ([]types.ProviderListing, error) {
	listings := []types.ProviderListing{}
	for _, id := range c.order {
		reg := c.providers[id]
		if !reg.enabled {
			continue
		}
		url, err := c.Initiate(ctx, id, redirect)
		if err != nil {
			return nil, err
		}
		listings = append(listings, types.ProviderListing{
			ID:   id,
			Name: reg.provider.DisplayName(),
			URL:  url,
		})
	}
	return listings, nil
}

type CallbackParams struct {
	Code  string
	State string
	Error string
}

type CallbackResult struct {
	User     *types.User
	Redirect string
}

// Callback finishes a login attempt. Provider failures surface immediately;
// there are no retries, the client restarts the whole flow instead.
func (c *Controller) Callback(ctx context.Context, providerID string, params CallbackParams) (*CallbackResult, error) {
	provider, err := c.lookup(providerID)
	if err != nil {
		return nil, err
	}

	if params.Error != "" {
		return nil, &apperr.ProviderError{Reason: params.Error}
	}
	if params.Code == "" {
		return nil, apperr.ErrMissingCode
	}

	redirect, err := c.states.Validate(ctx, params.State)
	if err != nil {
		return nil, err
	}

	accessToken, err := provider.ExchangeCode(ctx, params.Code)
	if err != nil {
		return nil, err
	}

	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := c.resolver.Resolve(ctx, profile)
	if err != nil {
		return nil, err
	}

	return &CallbackResult{
		User:     user,
		Redirect: redirect,
	}, nil
}

// Legacy listing format: display name to authorization URL.
func (c *Controller) LegacyListings(ctx context.Context, redirect string) (map[string]string, error) {
	listings, err := c.Listings(ctx, redirect)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, l := range listings {
		out[l.Name] = l.URL
	}
	return out, nil
}
