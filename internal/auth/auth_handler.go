package auth

import (
	"net/http"
	"strings"

	autherrors "github.com/Wakkzz12/employee-leave-tracker/internal/auth/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const clientTypeHeader = "X-Client-Type"

type Handler struct {
	service       Service
	secureCookies bool
	logger        *zap.Logger
}

// NewHandler sets the Secure flag on auth cookies when secureCookies is true,
// which should be the case in production.
func NewHandler(s Service, secureCookies bool, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, secureCookies: secureCookies, logger: l}
}

// isWebClient reports whether tokens should travel as cookies. Non-browser
// clients send X-Client-Type: MOBILE (or anything but WEB) and keep tokens in
// the body.
func isWebClient(c *gin.Context) bool {
	if ct := strings.TrimSpace(c.GetHeader(clientTypeHeader)); ct != "" {
		return strings.EqualFold(ct, "WEB")
	}
	return strings.Contains(c.GetHeader("User-Agent"), "Mozilla")
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("auth request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, err.Error())
}

func (h *Handler) setAuthCookies(c *gin.Context, access, refresh string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	access, refresh, userResp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if isWebClient(c) {
		h.setAuthCookies(c, access, refresh)
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":          userResp,
		"access_token":  access,
		"refresh_token": refresh,
	}, nil)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	web := isWebClient(c)

	var refreshToken string
	if web {
		refreshToken, _ = c.Cookie(middleware.RefreshTokenCookie)
	}
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, autherrors.ErrInvalidRefreshToken)
			return
		}
		refreshToken = req.RefreshToken
	}

	access, refresh, userResp, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		if web {
			h.clearAuthCookies(c)
		}
		h.writeServiceError(c, err)
		return
	}

	if web {
		h.setAuthCookies(c, access, refresh)
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":          userResp,
		"access_token":  access,
		"refresh_token": refresh,
	}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	userResp, err := h.service.GetMe(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userResp, nil)
}

// Logout only clears cookies; issued tokens stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, nil)
}
