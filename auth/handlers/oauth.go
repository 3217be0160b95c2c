package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/auth/handshake"
	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/responses"
	"github.com/nlysenko/datahub-gateway/services"
)

type OAuthHandler struct {
	controller *handshake.Controller
	authSvc    services.AuthService
	secureEnv  bool
}

func NewOAuthHandler(controller *handshake.Controller, authSvc services.AuthService, env string) *OAuthHandler {
	return &OAuthHandler{
		controller: controller,
		authSvc:    authSvc,
		secureEnv:  env == "PROD",
	}
}

// Providers godoc
// @Summary List enabled OAuth providers
// @Param redirect query string true "post-login redirect target"
// @Param list query bool false "return the list format instead of the legacy map"
// @Success 200
// @Router /oauth/provider [get]
func (h *OAuthHandler) Providers(c *gin.Context) {
	redirect := c.Query("redirect")
	if redirect == "" {
		responses.BadRequest(c, apperr.ErrMissingRedirect.Error())
		return
	}

	if c.Request.URL.Query().Has("list") {
		listings, err := h.controller.Listings(c.Request.Context(), redirect)
		if err != nil {
			responses.InternalServerError(c, "could not build provider listing")
			return
		}
		responses.JSONData(c, 200, listings)
		return
	}

	legacy, err := h.controller.LegacyListings(c.Request.Context(), redirect)
	if err != nil {
		responses.InternalServerError(c, "could not build provider listing")
		return
	}
	responses.JSONData(c, 200, legacy)
}

// Callback godoc
// @Summary OAuth provider callback
// @Param provider path string true "provider id"
// @Param code query string false "authorization code"
// @Param state query string false "CSRF state token"
// @Param error query string false "provider error"
// @Success 303
// @Router /oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	providerID := c.Param("provider")

	result, err := h.controller.Callback(c.Request.Context(), providerID, handshake.CallbackParams{
		Code:  c.Query("code"),
		State: c.Query("state"),
		Error: c.Query("error"),
	})
	if err != nil {
		responses.Error(c, apperr.StatusFor(err), messageFor(err))
		return
	}

	loginResp, err := h.authSvc.LoginOAuth(c.Request.Context(), result.User)
	if err != nil {
		responses.InternalServerError(c, "failed to generate session")
		return
	}

	h.setSessionCookies(c, loginResp)

	responses.Redirect(c, result.Redirect)
}

func (h *OAuthHandler) setSessionCookies(c *gin.Context, loginResp *services.LoginResponse) {
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

// messageFor keeps upstream wire details out of response bodies; the known
// handshake failures carry their canonical message.
func messageFor(err error) string {
	if errors.Is(err, apperr.ErrTokenExchange) || errors.Is(err, apperr.ErrProfileFetch) {
		return "Provider authentication failed."
	}
	return err.Error()
}
