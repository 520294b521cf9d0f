// Package resp writes the flat JSON bodies the web clients read: bare objects
// on success and {"message": "..."} on failure.
package resp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Message struct {
	Message string `json:"message"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Msg answers with just a message, for success or failure.
func Msg(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Message{Message: message})
}

func Error(c *gin.Context, httpCode int, message string) {
	Msg(c, httpCode, message)
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, Message{Message: message})
}
