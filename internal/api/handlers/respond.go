package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantify-ai/quantify-go/internal/dataset"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// respondError maps engine errors onto HTTP status codes: unknown datasets
// are 404, rejected input is 400, everything else is 500.
func respondError(c *gin.Context, err error) {
	switch {
	case dataset.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case validation.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
