package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/middleware"
	"github.com/caseforge/backend/internal/service"
)

// SolutionHandler handles solution submission and retrieval
type SolutionHandler struct {
	solutionService *service.SolutionService
}

// NewSolutionHandler creates a new solution handler
func NewSolutionHandler(solutionService *service.SolutionService) *SolutionHandler {
	return &SolutionHandler{
		solutionService: solutionService,
	}
}

// Submit accepts a solution submission. Runs behind optional auth: an
// authenticated submission updates the user's domain progress, an anonymous
// one is only stored.
// POST /api/solutions
func (h *SolutionHandler) Submit(c *gin.Context) {
	var req domain.SubmitSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	var userID *uuid.UUID
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	solution, err := h.solutionService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		switch err {
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		case domain.ErrDomainNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Unknown domain",
			})
		case domain.ErrInvalidInput:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid submission",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to submit solution",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, solution.ToResponse())
}

// GetSolution returns a single solution by ID
// GET /api/solutions/:id
func (h *SolutionHandler) GetSolution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid solution ID",
		})
		return
	}

	solution, err := h.solutionService.GetByID(c.Request.Context(), id)
	if err != nil {
		switch err {
		case domain.ErrSolutionNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Solution not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve solution",
			})
		}
		return
	}

	c.JSON(http.StatusOK, solution.ToResponse())
}

// GetMySolutions returns the authenticated user's solutions, newest first
// GET /api/solutions/me
func (h *SolutionHandler) GetMySolutions(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	solutions, err := h.solutionService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve solutions",
		})
		return
	}

	responses := make([]domain.SolutionResponse, len(solutions))
	for i, solution := range solutions {
		responses[i] = solution.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"solutions": responses,
		"count":     len(responses),
	})
}
