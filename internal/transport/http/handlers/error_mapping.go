package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorStatus is the HTTP rendering of a usecase sentinel.
type errorStatus struct {
	code    int
	message string
}

// respondError writes the mapped response for err. Errors without a mapping
// become a 500 with the fallback message.
func respondError(c *gin.Context, err error, mapping map[error]errorStatus, fallback string) {
	for sentinel, resp := range mapping {
		if errors.Is(err, sentinel) {
			c.JSON(resp.code, NewErrorResponse(c, resp.message))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, fallback))
}
