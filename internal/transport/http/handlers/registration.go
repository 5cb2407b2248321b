package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/usecase"
)

// RegistrationHandler exposes verification-code issuance and signup.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler constructs a registration handler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds the registration routes to the provided router group.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.POST("/email/send-code", h.SendCode)
	r.POST("/signup", h.Signup)
}

// SendCode issues a verification code to the given email. The response is
// the same whether or not the address is already registered; duplicates are
// only reported at signup.
func (h *RegistrationHandler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "a valid email is required"))
		return
	}

	if err := h.registration.IssueVerificationCode(c.Request.Context(), req.Email, c.ClientIP()); err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// Signup creates a local account from a verified email, code, and password.
func (h *RegistrationHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name, email, password, and code are required"))
		return
	}

	user, err := h.registration.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Code:     req.Code,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrDuplicateEmail, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrVerificationCodeExpired, Status: http.StatusBadRequest, Message: "verification code expired, request a new one"},
			{Err: usecase.ErrVerificationCodeMismatch, Status: http.StatusBadRequest, Message: "verification code does not match"},
			{Err: usecase.ErrPasswordTooWeak, Status: http.StatusBadRequest, Message: "password is too weak"},
		}
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "signup failed")
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{User: newUserSummary(*user)})
}
