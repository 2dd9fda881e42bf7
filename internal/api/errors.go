package api

import (
	"errors"
	"net/http"

	"PlayHorizon/internal/repository"
	"PlayHorizon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor 业务错误到 HTTP 状态与提示的映射；未知错误返回 500
func statusFor(err error) (int, string) {
	var v *service.ValidationError
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest, v.Message
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound, "Game not found"
	case errors.Is(err, repository.ErrGameExists):
		return http.StatusBadRequest, "Game already exists"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, repository.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already taken"
	case errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusBadRequest, "Duplicate entry"
	case errors.Is(err, repository.ErrEntryNotFound):
		return http.StatusNotFound, "Game not found in library"
	case errors.Is(err, repository.ErrEntryExists):
		return http.StatusBadRequest, "Game already in library"
	}
	return http.StatusInternalServerError, ""
}

// respondError 写错误响应；500 时使用 fallback 并记录日志
func respondError(c *gin.Context, logger *logrus.Logger, err error, fallback string, withMessage bool) {
	status, msg := statusFor(err)
	if status != http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	logger.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).Error(fallback)
	body := gin.H{"error": fallback}
	if withMessage {
		body["message"] = err.Error()
	}
	c.JSON(status, body)
}

// respondListError 列表接口出错时仍带空的 games 数组，前端不用判空
func respondListError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).Error(fallback)
		msg = fallback
	}
	c.JSON(status, gin.H{"error": msg, "games": []interface{}{}})
}
