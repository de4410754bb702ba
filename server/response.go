package server

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/intersvc/errors"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the uniform JSON body every inter-service handler returns.
// Callers switch on Status before touching Data.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success response.
func JSON(c *gin.Context, code int, data any) {
	c.JSON(code, &Response{
		Status: statusSuccess,
		Data:   data,
	})
}

// Error writes an error response. err may be an error, a string, or nil.
func Error(c *gin.Context, code int, err any) {
	var msg string
	switch v := err.(type) {
	case error:
		if e := errors.FromError(v); e != nil {
			msg = e.Message
		} else {
			msg = v.Error()
		}
	case string:
		msg = v
	default:
		msg = "operation failed"
	}

	c.JSON(code, &Response{
		Status:  statusError,
		Message: msg,
	})
}
