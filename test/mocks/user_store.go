package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nlysenko/datahub-gateway/auth/types"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ResetMock() {
	m.Mock = mock.Mock{}
}

func (m *MockUserStore) GetByLogin(ctx context.Context, login string) (*types.User, error) {
	args := m.Called(ctx, login)
	if u := args.Get(0); u != nil {
		return u.(*types.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*types.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByOAuth(ctx context.Context, provider, externalID string) (*types.User, error) {
	args := m.Called(ctx, provider, externalID)
	if u := args.Get(0); u != nil {
		return u.(*types.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) LoginExists(ctx context.Context, login string) (bool, error) {
	args := m.Called(ctx, login)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) SetPassword(ctx context.Context, login, hash, salt string) error {
	args := m.Called(ctx, login, hash, salt)
	return args.Error(0)
}

func (m *MockUserStore) IsReady(ctx context.Context) error {
	return nil
}

func (m *MockUserStore) Name() string {
	return "UserStore[mock]"
}
