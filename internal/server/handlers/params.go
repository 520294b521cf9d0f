package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Abin-1409/fuel-swift/internal/server/resp"
)

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		resp.Error(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// missingField returns the first empty required field, in order.
func missingField(fields ...[2]string) string {
	for _, f := range fields {
		if f[1] == "" {
			return f[0]
		}
	}
	return ""
}
