package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/contractchecker-server/internal/api/http/middleware"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

// SessionService exchanges an ID token for a session cookie value.
type SessionService interface {
	Create(ctx context.Context, idToken string) (string, model.Identity, error)
}

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	// Secure also switches SameSite from Lax to Strict.
	Secure bool
}

type createSessionRequest struct {
	IDToken string `json:"idToken"`
}

// Session serves the session boundary endpoints.
type Session struct {
	service SessionService
	cookie  CookieOptions
	logger  *logger.Logger
}

// NewSession creates a new Session handler.
func NewSession(service SessionService, cookie CookieOptions, logger *logger.Logger) *Session {
	return &Session{
		service: service,
		cookie:  cookie,
		logger:  logger,
	}
}

// Create handles POST /api/session.
func (h *Session) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("HTTP session handler: malformed body",
			"error", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	token, identity, err := h.service.Create(c.Request.Context(), req.IDToken)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setCookie(c, token, int(h.cookie.MaxAge.Seconds()))
	h.logger.Info("HTTP session handler: cookie set",
		"uid", identity.UID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete handles DELETE /api/session.
func (h *Session) Delete(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /api/me behind RequireSession.
func (h *Session) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"uid": c.GetString(middleware.CtxUserIDKey)})
}

func (h *Session) setCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteStrictMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
