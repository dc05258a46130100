package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mpmf/NexxtTask/internal/services"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type tokenResponse struct {
	UserID                string    `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

func newTokenResponse(result *services.AuthResult) tokenResponse {
	return tokenResponse{
		UserID:                result.UserID,
		AccessToken:           result.AccessToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
		RefreshToken:          result.RefreshToken,
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
	}
}

type signInRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,max=255"`
}

type signUpRequest struct {
	signInRequest
	FullName string `json:"full_name" form:"full_name" binding:"max=255"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updatePasswordRequest struct {
	Password string `json:"password" binding:"required,max=255"`
}

func (h *handlerImpl) HandleSignUp(c *gin.Context) {
	var req signUpRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.SignUp(c.Request.Context(), services.SignUpParams{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to sign up")
		abort(c, newServiceError(err))
		return
	}

	setTokenCookies(c, result)
	c.JSON(http.StatusCreated, newTokenResponse(result))
}

func (h *handlerImpl) HandleSignIn(c *gin.Context) {
	var req signInRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), services.SignInParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to sign in")
		abort(c, newServiceError(err))
		return
	}

	setTokenCookies(c, result)
	c.JSON(http.StatusOK, newTokenResponse(result))
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		cookie, err := c.Cookie(refreshTokenCookie)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to get refresh token cookie")
			abort(c, newBadRequestError(errMandatoryCookieNotFound.Error()))
			return
		}
		refreshToken = cookie
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), services.RefreshParams{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to refresh session")
		abort(c, newServiceError(err))
		return
	}

	setTokenCookies(c, result)
	c.JSON(http.StatusOK, newTokenResponse(result))
}

func (h *handlerImpl) HandleSignOut(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	err := h.auth.SignOut(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to sign out")
		abort(c, newServiceError(err))
		return
	}

	clearCookie(c, accessTokenCookie)
	clearCookie(c, refreshTokenCookie)

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleCurrentUser(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get current user")
		abort(c, newServiceError(err))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlerImpl) HandleUpdatePassword(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	var req updatePasswordRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.auth.UpdatePassword(c.Request.Context(), userID, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update password")
		abort(c, newServiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func setTokenCookies(c *gin.Context, result *services.AuthResult) {
	now := time.Now()
	setCookie(c, accessTokenCookie, result.AccessToken, result.AccessTokenExpiresAt.Sub(now))
	setCookie(c, refreshTokenCookie, result.RefreshToken, result.RefreshTokenExpiresAt.Sub(now))
}

func setCookie(c *gin.Context, name, token string, maxAge time.Duration) {
	const secure, httpOnly = false, true
	c.SetCookie(name, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", false, true)
}
