package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"financing-ledger/domain"
)

// writeError maps service errors onto status codes. Ledger failures carry
// the tool's diagnostic in "detail".
func (h *FinancingHandler) writeError(c *gin.Context, err error) {
	var ledgerErr *domain.LedgerError

	switch {
	case errors.As(err, &ledgerErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "blockchain transaction failed",
			"detail": ledgerErr.Diagnostic,
		})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.WithFields(logrus.Fields{
			"module": "http",
			"path":   c.FullPath(),
		}).Error(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
