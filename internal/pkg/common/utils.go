package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得或補上請求 ID
func RequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.Writer.Header().Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// WriteErrorResponse 依錯誤類型寫入錯誤響應
func WriteErrorResponse(c *gin.Context, err error, debug bool) {
	resp := ErrorResponse{
		Code:    ErrCodeInternalError,
		Message: ErrInternalError.Message,
	}

	var ce *CustomError
	switch {
	case IsValidationError(err):
		resp.Code = ErrCodeInvalidRequest
		resp.Message = err.Error()
	case errors.As(err, &ce):
		resp.Code = ce.Code
		resp.Message = ce.Message
	}
	if debug && err != nil {
		resp.Details = err.Error()
	}

	c.AbortWithStatusJSON(StatusOf(err), resp)
}
