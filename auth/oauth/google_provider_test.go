package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/config"
)

func googleTestConfig(serverURL string) *config.ProviderConfig {
	return &config.ProviderConfig{
		ClientID:     "gclient",
		ClientSecret: "gsecret",
		Enabled:      true,
		AuthURL:      serverURL + "/auth",
		ExchangeURL:  serverURL + "/token",
		ProfileURL:   serverURL + "/userinfo",
	}
}

func TestGoogleAuthURL(t *testing.T) {
	p := NewGoogleProvider(googleTestConfig("https://example.com"), "http://localhost:8080/")

	u, err := url.Parse(p.AuthURL("abc.http://localhost:3000/"))
	require.NoError(t, err)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "online", q.Get("access_type"))
	require.Equal(t, "profile email", q.Get("scope"))
	require.Equal(t, "gclient", q.Get("client_id"))
	require.Equal(t, "http://localhost:8080/oauth/google/callback", q.Get("redirect_uri"))
	require.Equal(t, "abc.http://localhost:3000/", q.Get("state"))
}

func TestGoogleExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "gclient", r.PostForm.Get("client_id"))
		require.Equal(t, "gsecret", r.PostForm.Get("client_secret"))
		require.Equal(t, "code123", r.PostForm.Get("code"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	}))
	defer srv.Close()

	p := NewGoogleProvider(googleTestConfig(srv.URL), "http://localhost:8080")

	token, err := p.ExchangeCode(context.Background(), "code123")
	require.NoError(t, err)
	require.Equal(t, "tok", token)
}

func TestGoogleExchangeCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "code expired",
		})
	}))
	defer srv.Close()

	p := NewGoogleProvider(googleTestConfig(srv.URL), "http://localhost:8080")

	_, err := p.ExchangeCode(context.Background(), "stale")
	require.ErrorIs(t, err, apperr.ErrTokenExchange)
}

func TestGoogleExchangeCode_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	p := NewGoogleProvider(googleTestConfig(srv.URL), "http://localhost:8080")

	_, err := p.ExchangeCode(context.Background(), "code123")
	require.ErrorIs(t, err, apperr.ErrTokenExchange)
}

func TestGoogleFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"sub":            "5326",
			"email":          "googleuser@mail.com",
			"email_verified": true,
			"given_name":     "John",
			"family_name":    "Doe",
		})
	}))
	defer srv.Close()

	p := NewGoogleProvider(googleTestConfig(srv.URL), "http://localhost:8080")

	profile, err := p.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "google", profile.Provider)
	require.Equal(t, "5326", profile.ID)
	require.Equal(t, "googleuser@mail.com", profile.Email)
	require.Equal(t, "John", profile.FirstName)
	require.Equal(t, "Doe", profile.LastName)
}

func TestGoogleFetchProfile_UnverifiedEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"sub":            "5326",
			"email":          "googleuser@mail.com",
			"email_verified": false,
		})
	}))
	defer srv.Close()

	p := NewGoogleProvider(googleTestConfig(srv.URL), "http://localhost:8080")

	_, err := p.FetchProfile(context.Background(), "tok")
	require.ErrorIs(t, err, apperr.ErrProfileFetch)
}
