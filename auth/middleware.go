package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nlysenko/datahub-gateway/auth/types"
	"github.com/nlysenko/datahub-gateway/responses"
)

// JWTMiddleware guards routes that require a logged-in account. The login is
// exposed to downstream handlers under the "login" key.
func JWTMiddleware(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie("jwt")
		if err != nil || token == "" {
			responses.Unauthorized(ctx, "unauthorized")
			return
		}

		parsedToken, err := jwt.ParseWithClaims(token, &types.JWTClaims{}, func(t *jwt.Token) (any, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !parsedToken.Valid {
			refresh, _ := ctx.Cookie("refresh_token")
			if refresh != "" {
				responses.Unauthorized(ctx, "token_expired")
			} else {
				responses.Unauthorized(ctx, "invalid_token")
			}
			return
		}

		claims := parsedToken.Claims.(*types.JWTClaims)
		if claims.Type != "access" {
			responses.Unauthorized(ctx, "invalid token type")
			return
		}

		ctx.Set("login", claims.Subject)
		ctx.Next()
	}
}
