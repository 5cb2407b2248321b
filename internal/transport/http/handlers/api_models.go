package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with a request ID for
// correlation.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response with the request ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: middleware.GetRequestID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the minimal view of a user returned by the API.
type UserSummary struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

func newUserSummary(u domain.User) UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         UserSummary `json:"user"`
}

// RefreshRequest represents the payload to rotate a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse carries the freshly rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// LogoutRequest optionally carries the refresh token to revoke alongside the
// access token from the Authorization header.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SendCodeRequest defines the payload for verification-code issuance.
type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SignupRequest defines the payload for local account creation.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Code     string `json:"code" binding:"required"`
}

// SignupResponse confirms account creation.
type SignupResponse struct {
	User UserSummary `json:"user"`
}

// SocialLoginRequest carries the provider's user-info payload as returned by
// its userinfo endpoint.
type SocialLoginRequest struct {
	UserInfo map[string]any `json:"user_info" binding:"required"`
}

// SocialLoginResponse is returned from the social callback. Exactly one of
// the token pair or the temp key is populated.
type SocialLoginResponse struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type,omitempty"`
	User         *UserSummary `json:"user,omitempty"`
	NewUser      bool         `json:"new_user"`
	TempKey      string       `json:"temp_key,omitempty"`
}

// SocialCompleteRequest finishes signup for a first-time social user.
type SocialCompleteRequest struct {
	TempKey string `json:"temp_key" binding:"required"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}
