package daemon

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/ledger"
)

// fail writes the JSON error envelope.
func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// failErr maps ledger errors to a status code.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalid), errors.Is(err, currency.ErrUnknownCurrency):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
