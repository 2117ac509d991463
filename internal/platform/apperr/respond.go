package apperr

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var exposeInternal atomic.Bool

// ExposeInternal controls whether 500 bodies carry the underlying error
// text. Only dev mode turns it on.
func ExposeInternal(on bool) { exposeInternal.Store(on) }

// Body builds the JSON document for err: {code, message, errors?, ...details}.
func Body(err error) gin.H {
	var api *APIError
	if !errors.As(err, &api) {
		h := gin.H{"code": CodeInternal, "message": "Internal server error"}
		if exposeInternal.Load() && err != nil {
			h["error"] = err.Error()
		}
		return h
	}

	h := gin.H{}
	for k, v := range api.Details {
		h[k] = v
	}
	h["code"] = api.Code
	h["message"] = api.Message
	if len(api.Fields) > 0 {
		h["errors"] = api.Fields
	}
	return h
}

// Respond writes err to the client. Unclassified errors are logged with the
// request context before a generic 500 goes out.
func Respond(c *gin.Context, err error) {
	status := ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, Body(err))
}
