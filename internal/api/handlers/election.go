package handlers

import (
	"net/http"
	"strconv"

	"election-service/internal/api/middleware"
	"election-service/internal/database"
	"election-service/internal/models"
	"election-service/internal/services"

	"github.com/gin-gonic/gin"
)

type ElectionHandler struct {
	electionService *services.ElectionService
	photos          *database.MinIOClient
}

func NewElectionHandler(electionService *services.ElectionService, photos *database.MinIOClient) *ElectionHandler {
	return &ElectionHandler{electionService: electionService, photos: photos}
}

// @Summary Create a new election
// @Description Create an election in the upcoming state with an optional initial roster
// @Tags elections
// @Accept json
// @Produce json
// @Param request body models.CreateElectionRequest true "Election details"
// @Success 201 {object} models.Election
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /elections [post]
func (h *ElectionHandler) Create(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	var req models.CreateElectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	election, err := h.electionService.Create(c.Request.Context(), identity.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, election)
}

// @Summary List elections
// @Description Admins see elections they own; voters see elections they are eligible for or voted in
// @Tags elections
// @Produce json
// @Success 200 {array} models.Election
// @Security BearerAuth
// @Router /elections [get]
func (h *ElectionHandler) List(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	elections, err := h.electionService.ListForIdentity(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, elections)
}

func (h *ElectionHandler) Get(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	election, err := h.electionService.GetForIdentity(c.Request.Context(), id, identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

func (h *ElectionHandler) Update(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateElectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	election, err := h.electionService.Update(c.Request.Context(), identity.UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

func (h *ElectionHandler) Delete(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.electionService.Delete(c.Request.Context(), identity.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary Start an election
// @Description Transition an upcoming election to active
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.Election
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /elections/{id}/start [put]
func (h *ElectionHandler) Start(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	election, err := h.electionService.Start(c.Request.Context(), identity.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

// @Summary End an election
// @Description Transition an active election to ended
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.Election
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /elections/{id}/end [put]
func (h *ElectionHandler) End(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	election, err := h.electionService.End(c.Request.Context(), identity.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

// @Summary Add a candidate
// @Description Add a candidate with an optional photo to an upcoming election
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Election ID"
// @Param name formData string true "Candidate name"
// @Param party formData string true "Party label"
// @Param photo formData file false "Candidate photo"
// @Success 201 {object} models.Candidate
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /elections/{id}/candidates [post]
func (h *ElectionHandler) AddCandidate(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photoURL := ""
	if file, err := c.FormFile("photo"); err == nil && h.photos != nil {
		photoURL, err = h.photos.UploadPhoto(c.Request.Context(), file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
			return
		}
	}

	candidate, err := h.electionService.AddCandidate(c.Request.Context(), identity.UserID, id, req.Name, req.Party, photoURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

func (h *ElectionHandler) RemoveCandidate(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	candidateID, ok := pathID(c, "candidate_id")
	if !ok {
		return
	}

	if err := h.electionService.RemoveCandidate(c.Request.Context(), identity.UserID, id, candidateID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": candidateID})
}

func (h *ElectionHandler) AddVoter(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AddVoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.electionService.AddVoter(c.Request.Context(), identity.UserID, id, req.VoterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election_id": id, "voter_id": req.VoterID})
}

func (h *ElectionHandler) RemoveVoter(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	voterID, ok := pathID(c, "voter_id")
	if !ok {
		return
	}

	if err := h.electionService.RemoveVoter(c.Request.Context(), identity.UserID, id, voterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"election_id": id, "voter_id": voterID})
}

// @Summary Admin dashboard stats
// @Description Aggregate counts scoped to the requesting administrator's own elections
// @Tags stats
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Security BearerAuth
// @Router /stats [get]
func (h *ElectionHandler) Stats(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	stats, err := h.electionService.Stats(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	// Another administrator's totals must never be cached and served.
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, stats)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
