package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/01moynul/relique/internal/auth"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// UserSource is what the auth middleware needs from the data layer.
type UserSource interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	MaintenanceMode(ctx context.Context) (bool, error)
}

// errNoToken means the request carried no Authorization header at all.
var errNoToken = errors.New("authorization header required")

// AuthMiddleware is our "security guard". It validates the Bearer token,
// loads the user (the database is the source of truth for the role, not the
// token) and enforces maintenance mode for everyone except administrators.
func AuthMiddleware(secret string, users UserSource, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, err := authenticate(c, secret, users)
		if err != nil {
			if status == http.StatusInternalServerError {
				logger.Error("auth lookup failed", "error", err, "request_id", RequestIDFrom(c))
				c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		// --- ENFORCE MAINTENANCE MODE ---
		if user.Role != models.RoleAdmin {
			on, err := users.MaintenanceMode(c.Request.Context())
			if err != nil {
				logger.Error("maintenance check failed", "error", err)
			}
			if on {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error": "The system is currently in maintenance mode. Please try again later.",
				})
				return
			}
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is
// present and otherwise lets the request through anonymously. Public routes
// use it to personalise responses (favorite flags, search history).
func OptionalAuthMiddleware(secret string, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _, err := authenticate(c, secret, users); err == nil {
			c.Set(ContextUserID, user.ID)
			c.Set(ContextUserRole, user.Role)
		}
		c.Next()
	}
}

// authenticate resolves the caller from the Authorization header. The
// returned status is the one to answer with when err is non-nil.
func authenticate(c *gin.Context, secret string, users UserSource) (*models.User, int, error) {
	// 1. --- Get Authorization Header ---
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, http.StatusUnauthorized, errNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, http.StatusUnauthorized, errors.New("invalid token format (must be Bearer)")
	}

	// 2. --- Validate Token ---
	claims, err := auth.ValidateToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid or expired token")
	}

	// 3. --- Load the user ---
	user, err := users.GetUser(c.Request.Context(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, http.StatusUnauthorized, errors.New("invalid or expired token")
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if user.Status != models.UserStatusActive {
		return nil, http.StatusForbidden, errors.New("account suspended")
	}
	return user, http.StatusOK, nil
}

// RequireRole lets the request through only when the authenticated user has
// one of roles. It must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: " + strings.Join(roles, " or ") + " role required"})
	}
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// UserRole returns the authenticated user's role, or "".
func UserRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}
