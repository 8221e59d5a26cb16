package handlers

import (
	"net/http"

	"election-service/internal/api/middleware"
	"election-service/internal/models"
	"election-service/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteService  *services.VoteService
	tallyService *services.TallyService
}

func NewVoteHandler(voteService *services.VoteService, tallyService *services.TallyService) *VoteHandler {
	return &VoteHandler{voteService: voteService, tallyService: tallyService}
}

// @Summary Cast a vote
// @Description Record one vote for a candidate in an active election. Each voter gets exactly one vote per election.
// @Tags votes
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body models.CastVoteRequest true "Chosen candidate"
// @Success 201 {object} map[string]uint
// @Failure 400 {object} map[string]string "Election not active"
// @Failure 403 {object} map[string]string "Not eligible"
// @Failure 404 {object} map[string]string "Election or candidate not found"
// @Failure 409 {object} map[string]string "Already voted"
// @Security BearerAuth
// @Router /elections/{id}/vote [post]
func (h *VoteHandler) CastVote(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voteID, err := h.voteService.CastVote(c.Request.Context(), identity.UserID, electionID, req.CandidateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vote_id": voteID})
}

// @Summary Election results
// @Description Candidates with their vote counts, highest first. Voters only see results once the election has ended.
// @Tags votes
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {array} models.CandidateCount
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /elections/{id}/results [get]
func (h *VoteHandler) Results(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	electionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	election, snapshot, err := h.tallyService.Results(c.Request.Context(), electionID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Access policy lives here at the boundary, not in the aggregator:
	// voters may not watch results while voting is still open.
	if identity.Role == models.RoleVoter && election.Status != models.StatusEnded {
		c.JSON(http.StatusForbidden, gin.H{"error": "results are not available until the election ends"})
		return
	}
	if identity.Role == models.RoleAdmin && election.CreatedBy != identity.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this election"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
