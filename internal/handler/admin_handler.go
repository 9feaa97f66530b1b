package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/service"
)

// AdminHandler handles the admin console endpoints for content management.
// All routes run behind AuthMiddleware + AdminMiddleware.
type AdminHandler struct {
	problemService *service.ProblemService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(problemService *service.ProblemService) *AdminHandler {
	return &AdminHandler{
		problemService: problemService,
	}
}

// CreateProblem adds a new problem to the catalog
// POST /api/admin/problems
func (h *AdminHandler) CreateProblem(c *gin.Context) {
	var req domain.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	problem, err := h.problemService.Create(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case domain.ErrDomainNotFound:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown domain",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create problem",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, problem.ToResponse())
}

// UpdateProblem applies edits to an existing problem. The ID is immutable.
// PATCH /api/admin/problems/:id
func (h *AdminHandler) UpdateProblem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid problem ID",
		})
		return
	}

	var req domain.UpdateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	problem, err := h.problemService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch err {
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		case domain.ErrDomainNotFound:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown domain",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update problem",
			})
		}
		return
	}

	c.JSON(http.StatusOK, problem.ToResponse())
}

// DeleteProblem removes a problem from the catalog
// DELETE /api/admin/problems/:id
func (h *AdminHandler) DeleteProblem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid problem ID",
		})
		return
	}

	if err := h.problemService.Delete(c.Request.Context(), id); err != nil {
		switch err {
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete problem",
			})
		}
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
