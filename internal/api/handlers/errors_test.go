package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"election-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		code int
	}{
		{models.ErrElectionNotFound, http.StatusNotFound},
		{models.ErrCandidateNotFound, http.StatusNotFound},
		{models.ErrVoterNotOnRoster, http.StatusNotFound},
		{models.ErrNotEligible, http.StatusForbidden},
		{models.ErrNotOwner, http.StatusForbidden},
		{models.ErrAlreadyVoted, http.StatusConflict},
		{models.ErrElectionNotActive, http.StatusBadRequest},
		{models.ErrInvalidTransition, http.StatusBadRequest},
		{models.ErrElectionNotEditable, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tt.err)
		assert.Equal(t, tt.code, w.Code, "error %v", tt.err)
	}
}

// Store failures must not leak internals to the caller.
func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}
