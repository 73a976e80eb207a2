package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/campuskit/loantrack/internal/auth"
	"github.com/campuskit/loantrack/internal/services"
	"github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/response"
)

// TokenHandler exposes single-use admin access token management plus the
// public redemption endpoint.
type TokenHandler struct {
	tokens   *services.TokenService
	sessions *iauth.SessionService
}

func NewTokenHandler(tokens *services.TokenService, sessions *iauth.SessionService) *TokenHandler {
	return &TokenHandler{tokens: tokens, sessions: sessions}
}

type issueTokenRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Description string `json:"description" validate:"max=200"`
	TTLMinutes  int    `json:"ttl_minutes" validate:"min=0,max=10080"`
}

// POST /api/admin/tokens
//
// The raw token value is only included in this response. Listings expose a
// truncated preview.
func (h *TokenHandler) Issue(c *gin.Context) {
	var req issueTokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, raw, err := h.tokens.Issue(requestContext(c), services.IssueTokenInput{
		UserID:      strings.TrimSpace(req.UserID),
		Description: strings.TrimSpace(req.Description),
		TTL:         time.Duration(req.TTLMinutes) * time.Minute,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":          token.ID,
		"token":       raw,
		"user_id":     token.UserID,
		"description": token.Description,
		"expires_at":  token.ExpiresAt,
	})
}

// GET /api/admin/tokens
func (h *TokenHandler) List(c *gin.Context) {
	tokens, err := h.tokens.List(requestContext(c))
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, tokens)
}

// POST /api/admin/tokens/:id/invalidate
func (h *TokenHandler) Invalidate(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.tokens.Invalidate(requestContext(c), c.Param("id"), actorID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invalidated": true})
}

// GET /admin/single-use-access/:token
//
// Public entry point for emailed access links. Redeeming consumes the token
// and exchanges it for a regular authenticated session.
func (h *TokenHandler) Redeem(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("token"))
	if raw == "" {
		response.Error(c, errors.NewBadRequest("token is required"))
		return
	}

	user, err := h.tokens.Redeem(requestContext(c), raw, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	// The link grants admin access; a holder who has since lost the admin
	// role gets nothing even though the token itself was valid.
	if !user.IsAdmin() {
		response.Error(c, errors.ErrForbidden)
		return
	}

	pair, _, err := h.sessions.CreateSession(user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Role:      string(user.Role),
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   userPayload(user),
	})
}
