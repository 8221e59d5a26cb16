package handlers

import (
	"errors"
	"net/http"

	"election-service/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to HTTP statuses. Anything unrecognized
// is a transient store failure: the caller may retry safely because a cast
// has no partial side effects, and a retried success returns 409.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrElectionNotFound), errors.Is(err, models.ErrCandidateNotFound),
		errors.Is(err, models.ErrVoterNotOnRoster):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotEligible), errors.Is(err, models.ErrNotOwner):
		// Deliberately vague: must not leak roster membership details.
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrElectionNotActive), errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrElectionNotEditable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure, please retry"})
	}
}
