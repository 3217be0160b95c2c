package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/account"
	"github.com/nlysenko/datahub-gateway/auth/oauth"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/store"
	"github.com/nlysenko/datahub-gateway/test/mocks"
)

func TestResolve_ExistingLinkedAccount(t *testing.T) {
	users := mocks.NewMemoryUserStore()
	require.NoError(t, users.Create(context.Background(), types.User{
		Login: "existing",
		Email: "kept@mail.com",
		OAuth: map[string]string{types.GoogleProvider: "5326"},
	}))

	resolver := account.NewResolver(users, mocks.NewMemorySettingsStore(store.PolicyClosed))

	user, err := resolver.Resolve(context.Background(), oauth.Profile{
		Provider: types.GoogleProvider,
		ID:       "5326",
		Email:    "changed@mail.com",
	})
	require.NoError(t, err)
	require.Equal(t, "existing", user.Login)
	// Profile data from the provider never overwrites the account's own.
	require.Equal(t, "kept@mail.com", user.Email)
	require.Equal(t, 1, users.Count())
}

func TestResolve_ClosedRegistration(t *testing.T) {
	users := mocks.NewMemoryUserStore()
	resolver := account.NewResolver(users, mocks.NewMemorySettingsStore(store.PolicyClosed))

	_, err := resolver.Resolve(context.Background(), oauth.Profile{
		Provider: types.GoogleProvider,
		ID:       "9999",
		Email:    "new@mail.com",
	})
	require.ErrorIs(t, err, apperr.ErrRegistrationClosed)
	require.Equal(t, 0, users.Count())
}

func TestResolve_ApprovalPolicyBlocksAutoProvision(t *testing.T) {
	users := mocks.NewMemoryUserStore()
	resolver := account.NewResolver(users, mocks.NewMemorySettingsStore(store.PolicyApproval))

	_, err := resolver.Resolve(context.Background(), oauth.Profile{
		Provider: types.GithubProvider,
		ID:       "42",
		Email:    "new@mail.com",
	})
	require.ErrorIs(t, err, apperr.ErrRegistrationClosed)
}

func TestResolve_ProvisionsNewAccount(t *testing.T) {
	users := mocks.NewMemoryUserStore()
	resolver := account.NewResolver(users, mocks.NewMemorySettingsStore(store.PolicyOpen))

	user, err := resolver.Resolve(context.Background(), oauth.Profile{
		Provider:  types.GoogleProvider,
		ID:        "9876",
		Email:     "metaphor@mail.com",
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	require.Equal(t, "metaphor", user.Login)
	require.Equal(t, "9876", user.OAuth[types.GoogleProvider])
	require.False(t, user.HasPassword())

	// A second login with the same external identity resolves to the same
	// account instead of provisioning a duplicate.
	again, err := resolver.Resolve(context.Background(), oauth.Profile{
		Provider: types.GoogleProvider,
		ID:       "9876",
		Email:    "metaphor@mail.com",
	})
	require.NoError(t, err)
	require.Equal(t, "metaphor", again.Login)
	require.Equal(t, 1, users.Count())
}
