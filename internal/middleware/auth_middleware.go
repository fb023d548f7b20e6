package middleware

import (
	"errors"
	"fmt"
	"strings"

	autherrors "github.com/Wakkzz12/employee-leave-tracker/internal/auth/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ParseToken verifies an HS256 token and returns its claims. expectedType
// guards against a refresh token being used as an access token.
func ParseToken(tokenString, secret, expectedType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired.WithCause(err)
		}
		return nil, autherrors.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}

	if typ, _ := claims["typ"].(string); typ != expectedType {
		return nil, autherrors.ErrInvalidToken
	}

	if userID, _ := claims["user_id"].(string); userID == "" {
		return nil, autherrors.ErrInvalidToken
	}

	return claims, nil
}

// AuthMiddleware accepts a bearer token or the access_token cookie and
// exposes user_id, email and role to later handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		if tokenString == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWithAppError(c, autherrors.ErrMissingToken)
			return
		}

		claims, err := ParseToken(tokenString, secret, TokenTypeAccess)
		if err != nil {
			abortWithAppError(c, err)
			return
		}

		userID, _ := claims["user_id"].(string)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		role = strings.ToUpper(role)

		c.Set("user_id", userID)
		c.Set("email", email)
		c.Set("role", role)

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		ctx = contextutil.WithRole(ctx, role)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, zap.L()).With(
			zap.String("user_id", userID),
			zap.String("role", role),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWithAppError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Abort(c, httpErr.Status, httpErr.Code, httpErr.Message)
}
