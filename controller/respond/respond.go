package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const startTimeKey = "respond.startTime"

// Response unified envelope of the /api/v1 routes
type Response struct {
	Code           int         `json:"code" example:"0"`
	Message        string      `json:"message" example:"success"`
	ProcessingTime int64       `json:"processingTime" example:"3"` // milliseconds
	Data           interface{} `json:"data,omitempty"`
}

// ErrorResponse bare error body of the /api compatibility routes
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid method"`
}

// TimingMiddleware records when the request started
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		c.Next()
	}
}

func elapsed(c *gin.Context) int64 {
	if v, ok := c.Get(startTimeKey); ok {
		if t, ok := v.(time.Time); ok {
			return time.Since(t).Milliseconds()
		}
	}
	return 0
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:           code,
		Message:        message,
		ProcessingTime: elapsed(c),
		Data:           data,
	})
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, 0, "success", data)
}

// SuccessWithCode 200 with a non-zero application code
func SuccessWithCode(c *gin.Context, code int, data interface{}) {
	write(c, http.StatusOK, code, "success", data)
}

// InvalidParam 400
func InvalidParam(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, http.StatusBadRequest, message, nil)
}

// InvalidParamWithData 400 that still carries a body, such as validation details
func InvalidParamWithData(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusBadRequest, http.StatusBadRequest, message, data)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	write(c, http.StatusNotFound, http.StatusNotFound, message, nil)
}

// Conflict 409
func Conflict(c *gin.Context, message string) {
	write(c, http.StatusConflict, http.StatusConflict, message, nil)
}

// Unavailable 503, a feature that needs configuration the server lacks
func Unavailable(c *gin.Context, message string) {
	write(c, http.StatusServiceUnavailable, http.StatusServiceUnavailable, message, nil)
}

// ServerError 500
func ServerError(c *gin.Context, message string) {
	write(c, http.StatusInternalServerError, http.StatusInternalServerError, message, nil)
}

// Error writes {"error": message} with status
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// MessageResponse bare message body of the mint route
type MessageResponse struct {
	Message string `json:"message" example:"Media is required"`
}

// Message writes {"message": message} with status
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}
