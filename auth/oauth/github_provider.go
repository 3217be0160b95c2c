package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/config"
)

type githubProvider struct {
	cfg         *config.ProviderConfig
	redirectURI string
	client      *auth.Client
}

func NewGithubProvider(cfg *config.ProviderConfig, callbackBase string) *githubProvider {
	return &githubProvider{
		cfg:         cfg,
		redirectURI: strings.TrimSuffix(callbackBase, "/") + "/oauth/github/callback",
		client:      auth.NewClient(10 * time.Second),
	}
}

func (p *githubProvider) ID() string {
	return types.GithubProvider
}

func (p *githubProvider) DisplayName() string {
	return "GitHub"
}

func (p *githubProvider) AuthURL(state string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("scope", "user:email")
	query.Set("client_id", p.cfg.ClientID)
	query.Set("redirect_uri", p.redirectURI)
	query.Set("state", state)
	return p.cfg.AuthURL + "?" + query.Encode()
}

func (p *githubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
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
		return "", fmt.Errorf("%w: github error: %s - %s", apperr.ErrTokenExchange, resp.Error, resp.ErrorDesc)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", apperr.ErrTokenExchange)
	}
	return resp.AccessToken, nil
}

func (p *githubProvider) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	var ghUser types.GithubUser
	if err := p.client.GetJSONWithToken(ctx, p.cfg.ProfileURL, accessToken, &ghUser); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", apperr.ErrProfileFetch, err)
	}

	email := ghUser.Email
	if email == "" {
		// Most GitHub accounts keep the profile email private; the emails
		// endpoint is the fallback, preferring the primary verified address.
		var emails []types.GithubEmail
		if err := p.client.GetJSONWithToken(ctx, p.cfg.EmailsURL, accessToken, &emails); err != nil {
			return Profile{}, fmt.Errorf("%w: %w", apperr.ErrProfileFetch, err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
		if email == "" {
			for _, e := range emails {
				if e.Verified {
					email = e.Email
					break
				}
			}
		}
		if email == "" {
			return Profile{}, fmt.Errorf("%w: no verified email found", apperr.ErrProfileFetch)
		}
	}

	firstName, lastName := splitName(ghUser.Name)

	return Profile{
		Provider:  types.GithubProvider,
		ID:        strconv.FormatInt(ghUser.ID, 10),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Login:     ghUser.Login,
	}, nil
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
