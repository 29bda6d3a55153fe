package handlers

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/services"
)

type AuthMiddleware struct {
	SupabaseAuth  *services.SupabaseAuthService
	UserService   *services.UserService
	APIKeyService *services.APIKeyService
}

func NewAuthMiddleware(userService *services.UserService, apiKeyService *services.APIKeyService) *AuthMiddleware {
	// Get Supabase configuration from environment variables
	supabaseURL := os.Getenv("SUPABASE_URL")
	jwtSecret := os.Getenv("SUPABASE_JWT_SECRET")

	if supabaseURL == "" {
		log.Fatal("Missing SUPABASE_URL configuration")
	}

	supabaseAuth := services.NewSupabaseAuthService(supabaseURL, jwtSecret)

	return &AuthMiddleware{
		SupabaseAuth:  supabaseAuth,
		UserService:   userService,
		APIKeyService: apiKeyService,
	}
}

// RequireAuth validates Supabase JWTs (or API keys) on protected routes
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		token, err := m.SupabaseAuth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		// API keys take the same header; try them first
		if m.APIKeyService != nil && strings.HasPrefix(token, "psa_") {
			apiKey, err := m.APIKeyService.ValidateAPIKey(token)
			if err == nil {
				c.Set("user_id", apiKey.UserID)
				c.Set("user_role", "api_key")
				c.Set("is_api_key", true)
				c.Set("api_key_id", apiKey.ID)
				// Update last used timestamp (async, don't block request)
				go func() { _ = m.APIKeyService.UpdateLastUsed(apiKey.ID) }()
				c.Next()
				return
			}
			// Fall through to JWT validation
		}

		claims, err := m.SupabaseAuth.ValidateSupabaseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: " + err.Error()})
			c.Abort()
			return
		}

		userInfo := m.SupabaseAuth.GetUserInfo(claims)
		c.Set("user", userInfo)

		// Ensure user exists in database (auto-sync)
		role, err := m.ensureUserExists(claims.UserID, claims)
		if err != nil {
			log.Printf("Failed to sync user to database: %v", err)
			// Don't fail the request, just log the error
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", role)

		c.Next()
	}
}

// ensureUserExists checks if the user exists in the database, creating a
// member record on first login. Returns the user's application role,
// which always comes from our table, never the JWT.
func (m *AuthMiddleware) ensureUserExists(userID string, claims *services.SupabaseClaims) (string, error) {
	user, err := m.UserService.GetUser(userID)
	if err == nil {
		return user.Role, nil
	}

	log.Printf("Creating new user record for: %s (%s)", claims.Email, userID)

	newUser := db.User{
		ID:         userID,
		Provider:   "supabase",
		ProviderID: userID,
		Email:      claims.Email,
		Name:       extractNameFromClaims(claims),
		Role:       "member", // Default role
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	return newUser.Role, m.UserService.CreateUserRecord(newUser)
}

// extractNameFromClaims extracts a display name from Supabase claims
func extractNameFromClaims(claims *services.SupabaseClaims) string {
	if claims.UserMeta != nil {
		if fullName, ok := claims.UserMeta["full_name"].(string); ok && fullName != "" {
			return fullName
		}
		if name, ok := claims.UserMeta["name"].(string); ok && name != "" {
			return name
		}
		if displayName, ok := claims.UserMeta["user_name"].(string); ok && displayName != "" {
			return displayName
		}
	}

	// Fallback to email without domain
	if strings.Contains(claims.Email, "@") {
		return strings.Split(claims.Email, "@")[0]
	}

	return "User"
}
