package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/service"
)

// ProblemHandler handles the public problem catalog endpoints
type ProblemHandler struct {
	problemService *service.ProblemService
}

// NewProblemHandler creates a new problem handler
func NewProblemHandler(problemService *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{
		problemService: problemService,
	}
}

// GetProblems returns problems, optionally filtered by domain, difficulty,
// category or company
// GET /api/problems
func (h *ProblemHandler) GetProblems(c *gin.Context) {
	filter := domain.ProblemFilter{
		Domain:     c.Query("domain"),
		Difficulty: domain.Difficulty(c.Query("difficulty")),
		Category:   c.Query("category"),
		Company:    c.Query("company"),
	}

	problems, err := h.problemService.List(c.Request.Context(), filter)
	if err != nil {
		switch err {
		case domain.ErrInvalidDifficulty:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid difficulty filter",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve problems",
			})
		}
		return
	}

	responses := make([]domain.ProblemResponse, len(problems))
	for i, problem := range problems {
		responses[i] = problem.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"problems": responses,
		"count":    len(responses),
	})
}

// GetProblem returns a specific problem by ID
// GET /api/problems/:id
func (h *ProblemHandler) GetProblem(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid problem ID",
		})
		return
	}

	problem, err := h.problemService.GetByID(c.Request.Context(), id)
	if err != nil {
		switch err {
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve problem",
			})
		}
		return
	}

	c.JSON(http.StatusOK, problem.ToResponse())
}
