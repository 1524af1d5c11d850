// Package httputil maps the internal error taxonomy onto HTTP responses
// shared by every handler.
package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

// ErrorResponse is the wire shape of every non-2xx body.
type ErrorResponse struct {
	Error  string         `json:"error"`
	Kind   string         `json:"kind,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// RespondError writes the status and body for err. Validation maps to
// 400, business-rule conflicts to 409, not-found to 404, everything
// else to 500 with the detail kept out of the response body.
func RespondError(c *gin.Context, log logger.ZapLogger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindBusinessRule:
			status = http.StatusConflict
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindStorage:
			log.Error("storage failure", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
			return
		}
		c.JSON(status, ErrorResponse{
			Error:  appErr.Message,
			Kind:   appErr.Kind.String(),
			Fields: appErr.Fields,
		})
		return
	}

	log.Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// BindJSON binds the request body and reports malformed JSON as a 400.
// Tag validation happens in the usecases, not here.
func BindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid JSON body: " + err.Error(),
			Kind:  apperr.KindValidation.String(),
		})
		return false
	}
	return true
}
