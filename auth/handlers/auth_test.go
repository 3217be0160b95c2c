package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nlysenko/datahub-gateway/auth/handlers"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/routers"
	"github.com/nlysenko/datahub-gateway/services"
	"github.com/nlysenko/datahub-gateway/test"
	"github.com/nlysenko/datahub-gateway/test/mocks"
)

const jwtSecret = "access-secret"

func setupAuth(t *testing.T) (*gin.Engine, *mocks.MemoryUserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := mocks.NewMemoryUserStore()
	authSvc := services.NewAuthServiceImpl(users, jwtSecret, "refresh-secret")

	r := gin.New()
	routers.RegisterAuthRoutes(handlers.NewAuthHandler(authSvc, "DEV"), jwtSecret, r)

	return r, users
}

func registerBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(types.RegisterUser{
		Login:     "johndoe",
		Email:     "john@mail.com",
		FirstName: "John",
		LastName:  "Doe",
		Password:  "password123",
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupAuth(t)

	w := test.PerformRequest(r, t, "POST", "/auth/register", registerBody(t),
		[]string{"Content-Type: application/json"}, false, "", "")
	require.Equal(t, http.StatusCreated, w.Code)

	// Same login again conflicts.
	w = test.PerformRequest(r, t, "POST", "/auth/register", registerBody(t),
		[]string{"Content-Type: application/json"}, false, "", "")
	require.Equal(t, http.StatusConflict, w.Code)

	body, _ := json.Marshal(types.LoginUser{Login: "johndoe", Password: "password123"})
	w = test.PerformRequest(r, t, "POST", "/auth/login", bytes.NewReader(body),
		[]string{"Content-Type: application/json"}, false, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "login successful")

	cookies := map[string]string{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	require.NotEmpty(t, cookies["jwt"])
	require.NotEmpty(t, cookies["refresh_token"])

	w = test.PerformRequest(r, t, "GET", "/auth/me", nil, nil, true, "jwt", cookies["jwt"])
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "johndoe")

	w = test.PerformRequest(r, t, "POST", "/auth/refresh", nil, nil, true, "refresh_token", cookies["refresh_token"])
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "refreshed")
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := setupAuth(t)

	w := test.PerformRequest(r, t, "POST", "/auth/register", registerBody(t),
		[]string{"Content-Type: application/json"}, false, "", "")
	require.Equal(t, http.StatusCreated, w.Code)

	body, _ := json.Marshal(types.LoginUser{Login: "johndoe", Password: "nope12"})
	w = test.PerformRequest(r, t, "POST", "/auth/login", bytes.NewReader(body),
		[]string{"Content-Type: application/json"}, false, "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid credentials")
}

func TestLogin_OAuthOnlyAccount(t *testing.T) {
	r, users := setupAuth(t)

	require.NoError(t, users.Create(context.Background(), types.User{
		Login: "googleuser",
		Email: "googleuser@mail.com",
		OAuth: map[string]string{types.GoogleProvider: "5326"},
	}))

	body, _ := json.Marshal(types.LoginUser{Login: "googleuser", Password: "whatever"})
	w := test.PerformRequest(r, t, "POST", "/auth/login", bytes.NewReader(body),
		[]string{"Content-Type: application/json"}, false, "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "You don't have a password.")
}

func TestMe_NoCookie(t *testing.T) {
	r, _ := setupAuth(t)

	w := test.PerformRequest(r, t, "GET", "/auth/me", nil, nil, false, "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_GarbageToken(t *testing.T) {
	r, _ := setupAuth(t)

	w := test.PerformRequest(r, t, "POST", "/auth/refresh", nil, nil, true, "refresh_token", "garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
