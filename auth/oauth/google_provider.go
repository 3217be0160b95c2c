package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/config"
)

type googleProvider struct {
	cfg         *config.ProviderConfig
	redirectURI string
	client      *auth.Client
}

func NewGoogleProvider(cfg *config.ProviderConfig, callbackBase string) *googleProvider {
	return &googleProvider{
		cfg:         cfg,
		redirectURI: strings.TrimSuffix(callbackBase, "/") + "/oauth/google/callback",
		client:      auth.NewClient(10 * time.Second),
	}
}

func (p *googleProvider) ID() string {
	return types.GoogleProvider
}

func (p *googleProvider) DisplayName() string {
	return "Google"
}

func (p *googleProvider) AuthURL(state string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("access_type", "online")
	query.Set("scope", "profile email")
	query.Set("client_id", p.cfg.ClientID)
	query.Set("redirect_uri", p.redirectURI)
	query.Set("state", state)
	return p.cfg.AuthURL + "?" + query.Encode()
}

func (p *googleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", p.cfg.ClientID)
	data.Set("client_secret", p.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", p.redirectURI)

	var resp struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}

	if err := p.client.PostFormJSON(ctx, p.cfg.ExchangeURL, data, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrTokenExchange, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: google error: %s - %s", apperr.ErrTokenExchange, resp.Error, resp.ErrorDesc)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", apperr.ErrTokenExchange)
	}
	return resp.AccessToken, nil
}

func (p *googleProvider) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	var gUser types.GoogleUser
	if err := p.client.GetJSONWithToken(ctx, p.cfg.ProfileURL, accessToken, &gUser); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", apperr.ErrProfileFetch, err)
	}

	if gUser.ID == "" {
		return Profile{}, fmt.Errorf("%w: google response missing user ID", apperr.ErrProfileFetch)
	}
	if gUser.Email == "" {
		return Profile{}, fmt.Errorf("%w: google response missing email", apperr.ErrProfileFetch)
	}
	if !gUser.EmailVerified {
		return Profile{}, fmt.Errorf("%w: email %s not verified by google", apperr.ErrProfileFetch, gUser.Email)
	}

	return Profile{
		Provider:  types.GoogleProvider,
		ID:        gUser.ID,
		Email:     gUser.Email,
		FirstName: gUser.GivenName,
		LastName:  gUser.FamilyName,
	}, nil
}
