// Package account maps a normalized external profile onto a local account:
// an already linked identity logs straight in, a new one is auto-provisioned
// when the registration policy allows it.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/oauth"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/logging"
	"github.com/nlysenko/datahub-gateway/store"
)

type Resolver struct {
	users    store.UserStore
	settings store.SettingsStore
}

func NewResolver(users store.UserStore, settings store.SettingsStore) *Resolver {
	return &Resolver{
		users:    users,
		settings: settings,
	}
}

func (r *Resolver) Resolve(ctx context.Context, profile oauth.Profile) (*types.User, error) {
	user, err := r.users.GetByOAuth(ctx, profile.Provider, profile.ID)
	if err == nil {
		// Existing linked account: its email and names are the user's own
		// and are not overwritten from the provider.
		return user, nil
	}
	if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, err
	}

	policy, err := r.settings.RegistrationPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if policy != store.PolicyOpen {
		return nil, apperr.ErrRegistrationClosed
	}

	login, err := DeriveLogin(ctx, r.users, profile.Email, profile.FirstName, profile.LastName, profile.Login)
	if err != nil {
		return nil, err
	}

	newUser := types.User{
		Login:     login,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		OAuth:     map[string]string{profile.Provider: profile.ID},
	}
	if err := r.users.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("could not provision account: %w", err)
	}

	logging.FromContext(ctx).Info("provisioned account from oauth login",
		slog.String("login", login),
		slog.String("provider", profile.Provider),
	)

	return &newUser, nil
}
