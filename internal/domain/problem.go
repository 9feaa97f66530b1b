package domain

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty represents the difficulty level of a problem
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// IsValid reports whether d is one of the known difficulty levels
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Weight returns a numeric weight for sorting by difficulty
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// Problem represents a business-case exercise in the catalog
type Problem struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title            string     `json:"title" gorm:"not null"`
	Description      string     `json:"description" gorm:"type:text;not null"`
	Difficulty       Difficulty `json:"difficulty" gorm:"type:varchar(10);not null;index"`
	Category         string     `json:"category" gorm:"not null"`
	Domain           string     `json:"domain" gorm:"not null;index"`
	Company          string     `json:"company,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes" gorm:"not null;default:60"`
	SampleFramework  string     `json:"sample_framework,omitempty" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relationships
	Solutions []Solution `json:"-" gorm:"foreignKey:ProblemID"`
}

// TableName specifies the table name for GORM
func (Problem) TableName() string {
	return "problems"
}

// ProblemFilter represents filtering options for problem queries
type ProblemFilter struct {
	Domain     string
	Difficulty Difficulty
	Category   string
	Company    string
}

// DifficultyCount is one bucket of a difficulty histogram
type DifficultyCount struct {
	Difficulty Difficulty `json:"difficulty"`
	Count      int64      `json:"count"`
}

// CategoryCount is one bucket of a category histogram
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DomainCount is one bucket of a per-domain histogram
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// ProblemRepository defines the interface for problem data access
type ProblemRepository interface {
	Create(problem *Problem) error
	CreateBatch(problems []Problem) error
	FindByID(id uuid.UUID) (*Problem, error)
	FindAll(filter ProblemFilter) ([]Problem, error)
	Update(problem *Problem) error
	Delete(id uuid.UUID) error
	Count() (int64, error)
	CountByDomain() ([]DomainCount, error)
	CountByDifficulty(domain string) ([]DifficultyCount, error)
	CountByCategory(domain string) ([]CategoryCount, error)
}

// CreateProblemRequest represents the data needed to create a problem
type CreateProblemRequest struct {
	Title            string `json:"title" binding:"required,min=3,max=200"`
	Description      string `json:"description" binding:"required"`
	Difficulty       string `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Category         string `json:"category" binding:"required"`
	Domain           string `json:"domain" binding:"required"`
	Company          string `json:"company"`
	TimeLimitMinutes int    `json:"time_limit_minutes" binding:"omitempty,min=5,max=480"`
	SampleFramework  string `json:"sample_framework"`
}

// UpdateProblemRequest represents an admin edit to a problem.
// The problem ID is immutable; every other field may change.
type UpdateProblemRequest struct {
	Title            *string `json:"title" binding:"omitempty,min=3,max=200"`
	Description      *string `json:"description"`
	Difficulty       *string `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	Category         *string `json:"category"`
	Domain           *string `json:"domain"`
	Company          *string `json:"company"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" binding:"omitempty,min=5,max=480"`
	SampleFramework  *string `json:"sample_framework"`
}

// ProblemResponse represents a problem in API responses
type ProblemResponse struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       Difficulty `json:"difficulty"`
	Category         string     `json:"category"`
	Domain           string     `json:"domain"`
	Company          string     `json:"company,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	SampleFramework  string     `json:"sample_framework,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToResponse converts a Problem to a ProblemResponse
func (p *Problem) ToResponse() ProblemResponse {
	return ProblemResponse{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Difficulty:       p.Difficulty,
		Category:         p.Category,
		Domain:           p.Domain,
		Company:          p.Company,
		TimeLimitMinutes: p.TimeLimitMinutes,
		SampleFramework:  p.SampleFramework,
		CreatedAt:        p.CreatedAt,
	}
}
