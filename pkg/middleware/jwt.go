package middleware

import (
	"context"
	"net/http"
	"strings"

	"SchoolManager/internal/auth"
	"SchoolManager/internal/metrics"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserFinder re-reads the user behind a token.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error)
}

func unauthorized(c echo.Context, m *metrics.Metrics, reason, msg string) error {
	m.AuthFailed(reason)
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
}

// Authenticate verifies the bearer token and then re-reads the user from the
// store on every request. The stored id and role always win over the values
// embedded in the token, so a role change or deactivation takes effect
// before the token expires.
func Authenticate(issuer *auth.TokenIssuer, users UserFinder, m *metrics.Metrics, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, m, "missing_token", "Missing Token")
			}
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			tokenString = strings.TrimSpace(tokenString)
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				return unauthorized(c, m, "malformed_header", "Malformed Authorization header")
			}

			claims, err := issuer.Verify(tokenString)
			if err != nil {
				return unauthorized(c, m, "invalid_token", "Invalid Token")
			}
			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return unauthorized(c, m, "invalid_token", "Invalid Token")
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				logger.Error("resolve token user", zap.String("userId", claims.UserID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
			if user == nil {
				return unauthorized(c, m, "unknown_user", "User not found")
			}
			if !user.Active {
				return unauthorized(c, m, "inactive_user", "Account is deactivated")
			}
			if user.Role != claims.Role {
				logger.Debug("token role is stale", zap.String("userId", claims.UserID),
					zap.String("tokenRole", claims.Role.String()), zap.String("currentRole", user.Role.String()))
			}

			auth.SetIdentity(c, &auth.Identity{UserID: user.ID, Role: user.Role, Claims: claims})
			return next(c)
		}
	}
}

// RequireRole rejects authenticated requests whose current role is not one
// of roles. It must run after Authenticate.
func RequireRole(roles ...auth.Role) echo.MiddlewareFunc {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := auth.IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
			}
			if !allowed[identity.Role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
			}
			return next(c)
		}
	}
}
