package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/middleware"
	"github.com/caseforge/backend/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService     *service.UserService
	progressService *service.ProgressService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, progressService *service.ProgressService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		progressService: progressService,
	}
}

// GetCurrentUser returns the currently authenticated user
// GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve user",
		})
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// GetProgress returns the user's domain progress. With ?domain= it returns
// the single aggregate for that domain (a zero-state view when the user has
// not submitted there yet); without it, all domains the user has touched.
// GET /api/users/me/progress
func (h *UserHandler) GetProgress(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	if domainName := c.Query("domain"); domainName != "" {
		progress, err := h.progressService.GetProgress(c.Request.Context(), userID, domainName)
		if err != nil {
			switch err {
			case domain.ErrDomainNotFound:
				c.JSON(http.StatusNotFound, gin.H{
					"error": "Unknown domain",
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to retrieve progress",
				})
			}
			return
		}

		resp := progress.ToResponse()
		resp.LevelTitle = h.progressService.LevelTitle(domainName, progress.Level)
		c.JSON(http.StatusOK, resp)
		return
	}

	rows, err := h.progressService.GetAllProgress(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve progress",
		})
		return
	}

	responses := make([]domain.DomainProgressResponse, len(rows))
	for i, row := range rows {
		responses[i] = row.ToResponse()
		responses[i].LevelTitle = h.progressService.LevelTitle(row.Domain, row.Level)
	}

	c.JSON(http.StatusOK, gin.H{
		"progress": responses,
		"count":    len(responses),
	})
}
