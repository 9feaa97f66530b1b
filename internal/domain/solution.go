package domain

import (
	"time"

	"github.com/google/uuid"
)

// Solution represents a user's submitted answer to a business-case problem.
// Solutions are append-only: the normal flow never updates or deletes them.
// UserID is nil for anonymous submissions, which are stored but do not
// contribute to domain progress.
type Solution struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProblemID        uuid.UUID  `json:"problem_id" gorm:"type:uuid;not null;index"`
	UserID           *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Content          string     `json:"content" gorm:"type:text;not null"`
	Domain           string     `json:"domain" gorm:"not null;index"` // copied from the problem at submission time
	Score            *int       `json:"score,omitempty"`
	TimeTakenMinutes int        `json:"time_taken_minutes" gorm:"not null;default:0"`
	SubmittedAt      time.Time  `json:"submitted_at" gorm:"not null"`

	// Relationships
	Problem Problem `json:"-" gorm:"foreignKey:ProblemID"`
	User    *User   `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (Solution) TableName() string {
	return "solutions"
}

// SolutionRepository defines the interface for solution data access
type SolutionRepository interface {
	Create(solution *Solution) error
	FindByID(id uuid.UUID) (*Solution, error)
	FindByUserID(userID uuid.UUID) ([]Solution, error)
	Count() (int64, error)
	CountByDomain(domain string) (int64, error)
}

// SubmitSolutionRequest represents the payload for a solution submission
type SubmitSolutionRequest struct {
	ProblemID        string `json:"problem_id" binding:"required,uuid"`
	Content          string `json:"content" binding:"required,min=1"`
	Score            *int   `json:"score" binding:"omitempty,min=0,max=1000"`
	TimeTakenMinutes int    `json:"time_taken_minutes" binding:"omitempty,min=0"`
}

// SolutionResponse represents a solution in API responses
type SolutionResponse struct {
	ID               uuid.UUID `json:"id"`
	ProblemID        uuid.UUID `json:"problem_id"`
	ProblemTitle     string    `json:"problem_title,omitempty"`
	Domain           string    `json:"domain"`
	Content          string    `json:"content"`
	Score            *int      `json:"score,omitempty"`
	TimeTakenMinutes int       `json:"time_taken_minutes"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// ToResponse converts a Solution to a SolutionResponse
func (s *Solution) ToResponse() SolutionResponse {
	resp := SolutionResponse{
		ID:               s.ID,
		ProblemID:        s.ProblemID,
		Domain:           s.Domain,
		Content:          s.Content,
		Score:            s.Score,
		TimeTakenMinutes: s.TimeTakenMinutes,
		SubmittedAt:      s.SubmittedAt,
	}
	if s.Problem.ID != uuid.Nil {
		resp.ProblemTitle = s.Problem.Title
	}
	return resp
}
