package services

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseAuthService validates Supabase-issued JWTs. Tokens are signed
// HS256 with the project JWT secret.
type SupabaseAuthService struct {
	supabaseURL string
	jwtSecret   string
}

// SupabaseClaims are the claims we care about from a Supabase access token
type SupabaseClaims struct {
	UserID   string                 `json:"-"`
	Email    string                 `json:"email"`
	Role     string                 `json:"role"`
	UserMeta map[string]interface{} `json:"user_metadata"`
	AppMeta  map[string]interface{} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// UserInfo is the context payload handlers see for an authenticated user
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewSupabaseAuthService(supabaseURL, jwtSecret string) *SupabaseAuthService {
	return &SupabaseAuthService{
		supabaseURL: supabaseURL,
		jwtSecret:   jwtSecret,
	}
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization header
func (s *SupabaseAuthService) ExtractTokenFromHeader(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header must be in format 'Bearer <token>'")
	}
	if parts[1] == "" {
		return "", fmt.Errorf("token is empty")
	}
	return parts[1], nil
}

// ValidateSupabaseToken parses and validates a Supabase JWT
func (s *SupabaseAuthService) ValidateSupabaseToken(tokenString string) (*SupabaseClaims, error) {
	if s.jwtSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET not configured")
	}

	claims := &SupabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	// Supabase puts the user ID in the subject claim
	claims.UserID = claims.Subject
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}

// GetUserInfo converts validated claims to the handler-facing user info
func (s *SupabaseAuthService) GetUserInfo(claims *SupabaseClaims) UserInfo {
	return UserInfo{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}
}
