package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/service"
)

// DomainHandler serves the domain catalog and the read-only aggregate views
// (domain stats, leaderboards, platform stats)
type DomainHandler struct {
	catalog      *catalog.Catalog
	statsService *service.StatsService
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(cat *catalog.Catalog, statsService *service.StatsService) *DomainHandler {
	return &DomainHandler{
		catalog:      cat,
		statsService: statsService,
	}
}

// domainView is a catalog entry decorated with its live problem count
type domainView struct {
	Name         string              `json:"name"`
	Color        string              `json:"color"`
	Categories   []string            `json:"categories"`
	Skills       []string            `json:"skills"`
	Levels       []catalog.LevelTier `json:"levels"`
	ProblemCount int64               `json:"problem_count"`
}

// GetDomains returns the configured domains with their problem counts
// GET /api/domains
func (h *DomainHandler) GetDomains(c *gin.Context) {
	counts, err := h.statsService.DomainProblemCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve domains",
		})
		return
	}

	domains := h.catalog.All()
	views := make([]domainView, len(domains))
	for i, d := range domains {
		views[i] = domainView{
			Name:         d.Name,
			Color:        d.Color,
			Categories:   d.Categories,
			Skills:       d.Skills,
			Levels:       d.Levels,
			ProblemCount: counts[d.Name],
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"domains": views,
		"count":   len(views),
	})
}

// GetDomainStats returns problem and solution aggregates for one domain
// GET /api/domains/:name/stats
func (h *DomainHandler) GetDomainStats(c *gin.Context) {
	stats, err := h.statsService.DomainStats(c.Request.Context(), c.Param("name"))
	if err != nil {
		switch err {
		case domain.ErrDomainNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Unknown domain",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve domain statistics",
			})
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard returns the ranked users within one domain
// GET /api/domains/:name/leaderboard?limit=
func (h *DomainHandler) GetLeaderboard(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	board, err := h.statsService.Leaderboard(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		switch err {
		case domain.ErrDomainNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Unknown domain",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve leaderboard",
			})
		}
		return
	}

	c.JSON(http.StatusOK, board)
}

// GetPlatformStats returns global counts and distributions
// GET /api/stats
func (h *DomainHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.statsService.PlatformStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve platform statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
