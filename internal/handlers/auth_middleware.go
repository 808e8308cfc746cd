package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/config"
	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

// Context keys set by the auth middleware
const (
	ctxUserID    = "user_id"
	ctxUserRole  = "user_role"
	ctxUserEmail = "user_email"
	ctxUser      = "user"
)

// TokenVerifier resolves a bearer token to a principal
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// JWTVerifier accepts tokens issued by the auth service
type JWTVerifier struct {
	tokens *services.TokenIssuer
}

func NewJWTVerifier(tokens *services.TokenIssuer) *JWTVerifier {
	return &JWTVerifier{tokens: tokens}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := v.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// CasdoorVerifier accepts Casdoor tokens and mirrors the user locally
type CasdoorVerifier struct {
	client *casdoorsdk.Client
	auth   services.AuthService
}

func NewCasdoorVerifier(cfg config.CasdoorConfig, auth services.AuthService) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorVerifier{client: client, auth: auth}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrUnauthorized, err)
	}
	if claims.Id == "" {
		return nil, fmt.Errorf("%w: invalid user ID in token", services.ErrUnauthorized)
	}

	name := claims.User.DisplayName
	if name == "" {
		name = claims.User.Name
	}
	return v.auth.SyncExternalUser(ctx, &models.User{
		ID:    claims.Id,
		Name:  name,
		Email: claims.User.Email,
	})
}

// AuthMiddleware tries each verifier in order
type AuthMiddleware struct {
	BaseHandler
	verifiers []TokenVerifier
}

func NewAuthMiddleware(logger utils.Logger, verifiers ...TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		BaseHandler: NewBaseHandler(logger),
		verifiers:   verifiers,
	}
}

// RequireAuth rejects requests without a valid bearer token
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			am.respondError(c, http.StatusUnauthorized, "unauthorized", "Authorization header missing or malformed", nil)
			return
		}

		user, err := am.verify(c.Request.Context(), token)
		if err != nil {
			am.log(c).Debug("Token rejected", "error", err)
			message := "Invalid token"
			if services.IsExpired(err) {
				message = "Token expired"
			}
			am.respondError(c, http.StatusUnauthorized, "unauthorized", message, nil)
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUserRole, user.Role)
		c.Set(ctxUserEmail, user.Email)
		c.Set(ctxUser, user)
		c.Next()
	}
}

func (am *AuthMiddleware) verify(ctx context.Context, token string) (*models.User, error) {
	var errs []error
	for _, verifier := range am.verifiers {
		user, err := verifier.Verify(ctx, token)
		if err == nil {
			return user, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, services.ErrUnauthorized
	}
	return nil, errors.Join(errs...)
}

// RequireRoleMiddleware checks if user has one of the required roles
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			am.respondError(c, http.StatusForbidden, "forbidden", "User role not found in context", nil)
			return
		}
		if role != models.RoleAdmin && !slices.Contains(requiredRoles, role) {
			am.respondError(c, http.StatusForbidden, "forbidden",
				fmt.Sprintf("Insufficient permissions, required role: %v", requiredRoles), nil)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID type in context")
	}
	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(ctxUserRole)
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}
	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}
	return role, nil
}

// GetIdentityFromContext builds the service identity of the caller
func GetIdentityFromContext(c *gin.Context) (services.Identity, error) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return services.Identity{}, err
	}
	role, err := GetUserRoleFromContext(c)
	if err != nil {
		return services.Identity{}, err
	}
	return services.Identity{UserID: userID, Role: role, Email: c.GetString(ctxUserEmail)}, nil
}
