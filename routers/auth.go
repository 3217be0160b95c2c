package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/nlysenko/datahub-gateway/auth"
	"github.com/nlysenko/datahub-gateway/auth/handlers"
)

func RegisterAuthRoutes(h *handlers.AuthHandler, jwtSecret string, route *gin.Engine) {
	authGroup := route.Group("/auth")

	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.GET("/me", auth.JWTMiddleware(jwtSecret), h.Me)
}

func RegisterOAuthRoutes(h *handlers.OAuthHandler, route *gin.Engine) {
	oauthGroup := route.Group("/oauth")

	oauthGroup.GET("/provider", h.Providers)
	oauthGroup.GET("/:provider/callback", h.Callback)
}
