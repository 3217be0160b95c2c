package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/responses"
	"github.com/nlysenko/datahub-gateway/services"
)

type AuthHandler struct {
	authSvc   services.AuthService
	secureEnv bool
}

func NewAuthHandler(authSvc services.AuthService, env string) *AuthHandler {
	return &AuthHandler{
		authSvc:   authSvc,
		secureEnv: env == "PROD",
	}
}

// Register godoc
// @Summary Register a new account with a password
// @Accept json
// @Success 201
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterUser
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "invalid input")
		return
	}

	if err := h.authSvc.Register(c.Request.Context(), req); err != nil {
		if errors.Is(err, apperr.ErrUserAlreadyExists) {
			responses.Error(c, http.StatusConflict, "user already exists")
			return
		}
		responses.InternalServerError(c, "could not create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "created"})
}

// Login godoc
// @Summary Password login
// @Accept json
// @Success 200
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginUser
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "invalid input")
		return
	}

	loginResp, err := h.authSvc.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		// An OAuth-only account exists but cannot do password auth; tell the
		// user that instead of claiming the credentials are wrong.
		if errors.Is(err, apperr.ErrNoPassword) {
			responses.BadRequest(c, apperr.ErrNoPassword.Error())
			return
		}
		responses.Unauthorized(c, "invalid credentials")
		return
	}

	h.setCookies(c, loginResp)

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user":    loginResp.User,
	})
}

// Me godoc
// @Summary Current account
// @Success 200
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	token, err := c.Cookie("jwt")
	if err != nil || token == "" {
		responses.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), token)
	if err != nil {
		responses.Unauthorized(c, "unauthorized")
		return
	}

	responses.JSONData(c, http.StatusOK, user)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Success 200
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		responses.Unauthorized(c, "unauthorized")
		return
	}

	pair, err := h.authSvc.RefreshToken(c.Request.Context(), refresh)
	if err != nil {
		responses.Unauthorized(c, "invalid refresh token")
		return
	}

	h.setCookies(c, &services.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})

	responses.JSONSuccess(c, "refreshed")
}

func (h *AuthHandler) setCookies(c *gin.Context, loginResp *services.LoginResponse) {
	c.SetCookie(
		"refresh_token",
		loginResp.RefreshToken,
		int(types.RefreshTokenDuration.Seconds()),
		types.CookiePath,
		"",
		h.secureEnv,
		true,
	)

	c.SetCookie(
		"jwt",
		loginResp.AccessToken,
		int(types.AccessTokenDuration.Seconds()),
		types.CookiePath,
		"",
		h.secureEnv,
		true,
	)
}
