package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseforge/backend/internal/domain"
)

// solutionRepository implements domain.SolutionRepository using GORM
type solutionRepository struct {
	db *gorm.DB
}

// NewSolutionRepository creates a new solution repository
func NewSolutionRepository(db *gorm.DB) domain.SolutionRepository {
	return &solutionRepository{db: db}
}

// Create appends a new solution record
func (r *solutionRepository) Create(solution *domain.Solution) error {
	return r.db.Create(solution).Error
}

// FindByID finds a solution by its ID
func (r *solutionRepository) FindByID(id uuid.UUID) (*domain.Solution, error) {
	var solution domain.Solution
	result := r.db.Preload("Problem").Where("id = ?", id).First(&solution)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSolutionNotFound
		}
		return nil, result.Error
	}
	return &solution, nil
}

// FindByUserID returns all solutions for a user, newest first
func (r *solutionRepository) FindByUserID(userID uuid.UUID) ([]domain.Solution, error) {
	var solutions []domain.Solution
	result := r.db.
		Preload("Problem").
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&solutions)
	return solutions, result.Error
}

// Count returns the total number of solutions
func (r *solutionRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&domain.Solution{}).Count(&count)
	return count, result.Error
}

// CountByDomain returns the number of solutions submitted within a domain
func (r *solutionRepository) CountByDomain(domainName string) (int64, error) {
	var count int64
	result := r.db.Model(&domain.Solution{}).
		Where("domain = ?", domainName).
		Count(&count)
	return count, result.Error
}

// WithContext returns a repository with the given context for tracing
func (r *solutionRepository) WithContext(ctx context.Context) domain.SolutionRepository {
	return &solutionRepository{db: r.db.WithContext(ctx)}
}
