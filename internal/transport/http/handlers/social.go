package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/usecase"
)

// SocialHandler exposes OAuth2 social login endpoints. The OAuth2
// authorization dance happens at the edge; these endpoints receive the
// provider's userinfo payload and drive account matching and signup.
type SocialHandler struct {
	social *usecase.SocialService
}

// NewSocialHandler constructs a social login handler.
func NewSocialHandler(social *usecase.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

// RegisterRoutes binds the social login routes to the provided router group.
func (h *SocialHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.POST("/:provider/login", h.Callback)
	r.POST("/complete", h.Complete)
}

// Callback matches the provider identity against existing accounts. Known
// users get a token pair; first-time users get a temp key for Complete.
func (h *SocialHandler) Callback(c *gin.Context) {
	provider := domain.OAuthProvider(c.Param("provider"))

	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_info is required"))
		return
	}

	info, err := usecase.ParseUserInfo(provider, req.UserInfo)
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrProviderNotSupported, Status: http.StatusBadRequest, Message: "unsupported oauth provider"},
		}
		RespondWithMappedError(c, err, cases, http.StatusBadRequest, "invalid provider payload")
		return
	}

	result, err := h.social.HandleCallback(c.Request.Context(), *info, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "social login failed")
		return
	}

	c.JSON(http.StatusOK, newSocialLoginResponse(result))
}

// Complete finishes signup for a first-time social user using the temp key
// returned by Callback.
func (h *SocialHandler) Complete(c *gin.Context) {
	var req SocialCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "temp_key is required"))
		return
	}

	result, err := h.social.CompleteSignup(c.Request.Context(), req.TempKey, req.Name, req.Phone, c.ClientIP())
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrTempInfoNotFound, Status: http.StatusNotFound, Message: "signup session expired, restart social login"},
			{Err: usecase.ErrDuplicateEmail, Status: http.StatusConflict, Message: "email already registered"},
		}
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "social signup failed")
		return
	}

	c.JSON(http.StatusCreated, newSocialLoginResponse(result))
}

func newSocialLoginResponse(result *usecase.SocialLoginResult) SocialLoginResponse {
	resp := SocialLoginResponse{NewUser: result.NewUser(), TempKey: result.TempKey}

	if result.Tokens != nil {
		resp.AccessToken = result.Tokens.AccessToken
		resp.RefreshToken = result.Tokens.RefreshToken
		resp.TokenType = tokenTypeBearer
	}
	if result.User != nil {
		summary := newUserSummary(*result.User)
		resp.User = &summary
	}

	return resp
}
