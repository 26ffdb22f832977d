package util

import (
	"errors"
	"net/http"
	"vocaman_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.String("method", c.Request.Method),
		zap.Error(err))
	InternalServerError(c)
}

var errorStatus = []struct {
	err    error
	status int
}{
	{ErrInvalidID, http.StatusBadRequest},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrNoFieldsProvided, http.StatusBadRequest},
	{ErrInvalidStatus, http.StatusBadRequest},
	{ErrTermNotInDataset, http.StatusBadRequest},
	{ErrSelfRelation, http.StatusBadRequest},
	{ErrRelationAlreadyHandled, http.StatusBadRequest},
	{ErrInvalidFileType, http.StatusBadRequest},

	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized},

	{ErrForbidden, http.StatusForbidden},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrRelationNotApproved, http.StatusForbidden},

	{ErrUserNotFound, http.StatusNotFound},
	{ErrRelationNotFound, http.StatusNotFound},
	{ErrDatasetNotFound, http.StatusNotFound},
	{ErrConceptNotFound, http.StatusNotFound},
	{ErrConceptNotMember, http.StatusNotFound},
	{ErrTermNotFound, http.StatusNotFound},
	{ErrNoDefaultDataset, http.StatusNotFound},
	{ErrAudioNotFound, http.StatusNotFound},
	{ErrAssignmentNotFound, http.StatusNotFound},
	{ErrNotificationNotFound, http.StatusNotFound},

	{ErrEmailRegistered, http.StatusConflict},
	{ErrRelationExists, http.StatusConflict},
	{ErrConceptInDataset, http.StatusConflict},
	{ErrDatasetInUse, http.StatusConflict},
	{ErrAlreadyCompleted, http.StatusConflict},
	{ErrAssignmentCancelled, http.StatusConflict},
	{ErrInvalidTransition, http.StatusConflict},
	{ErrConflict, http.StatusConflict},

	{ErrGoogleLogin, http.StatusServiceUnavailable},
}

// StatusOf maps a service error to its HTTP status; unknown errors are 500.
func StatusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// HandleServiceError answers with the status mapped from err. Store failures and
// unknown errors are logged and hidden behind a generic message.
func HandleServiceError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		if errors.Is(err, ErrStoreUnavailable) {
			logger.Log.Warn("store unavailable", zap.String("path", c.FullPath()), zap.Error(err))
			Error(c, status, ErrStoreUnavailable.Error())
			return
		}
		LogInternalError(c, err)
		return
	}
	Error(c, status, clientMessage(err, status))
}

// clientMessage keeps validation detail for 400s and reduces everything else
// to the sentinel's text.
func clientMessage(err error, status int) string {
	if status == http.StatusBadRequest {
		return err.Error()
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.err.Error()
		}
	}
	return err.Error()
}
