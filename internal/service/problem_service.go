package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/domain"
)

// defaultTimeLimitMinutes applies when a new problem omits its time limit
const defaultTimeLimitMinutes = 60

// ProblemService handles the problem catalog: public reads plus the
// admin-only mutations
type ProblemService struct {
	problemRepo domain.ProblemRepository
	catalog     *catalog.Catalog
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewProblemService creates a new problem service
func NewProblemService(
	problemRepo domain.ProblemRepository,
	cat *catalog.Catalog,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo: problemRepo,
		catalog:     cat,
		tracer:      tracer,
		logger:      logger,
	}
}

// List returns problems matching the filter
func (s *ProblemService) List(ctx context.Context, filter domain.ProblemFilter) ([]domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.List")
	defer span.End()

	if filter.Difficulty != "" && !filter.Difficulty.IsValid() {
		return nil, domain.ErrInvalidDifficulty
	}
	return s.problemRepo.FindAll(filter)
}

// GetByID returns a specific problem
func (s *ProblemService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("problem.id", id.String()))
	return s.problemRepo.FindByID(id)
}

// Create adds a new problem to the catalog. The domain must be one of the
// configured catalog domains.
func (s *ProblemService) Create(ctx context.Context, req *domain.CreateProblemRequest) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.Create")
	defer span.End()

	if _, ok := s.catalog.Get(req.Domain); !ok {
		return nil, domain.ErrDomainNotFound
	}

	timeLimit := req.TimeLimitMinutes
	if timeLimit == 0 {
		timeLimit = defaultTimeLimitMinutes
	}

	problem := &domain.Problem{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       domain.Difficulty(req.Difficulty),
		Category:         req.Category,
		Domain:           req.Domain,
		Company:          req.Company,
		TimeLimitMinutes: timeLimit,
		SampleFramework:  req.SampleFramework,
	}

	if err := s.problemRepo.Create(problem); err != nil {
		s.logger.Error("Failed to create problem", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Problem created",
		zap.String("problem_id", problem.ID.String()),
		zap.String("domain", problem.Domain),
		zap.String("difficulty", string(problem.Difficulty)),
	)

	span.SetAttributes(attribute.String("problem.id", problem.ID.String()))
	return problem, nil
}

// Update applies admin edits to an existing problem. The ID is immutable.
func (s *ProblemService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProblemRequest) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("problem.id", id.String()))

	problem, err := s.problemRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Domain != nil {
		if _, ok := s.catalog.Get(*req.Domain); !ok {
			return nil, domain.ErrDomainNotFound
		}
		problem.Domain = *req.Domain
	}
	if req.Title != nil {
		problem.Title = *req.Title
	}
	if req.Description != nil {
		problem.Description = *req.Description
	}
	if req.Difficulty != nil {
		problem.Difficulty = domain.Difficulty(*req.Difficulty)
	}
	if req.Category != nil {
		problem.Category = *req.Category
	}
	if req.Company != nil {
		problem.Company = *req.Company
	}
	if req.TimeLimitMinutes != nil {
		problem.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.SampleFramework != nil {
		problem.SampleFramework = *req.SampleFramework
	}

	if err := s.problemRepo.Update(problem); err != nil {
		s.logger.Error("Failed to update problem",
			zap.String("problem_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Problem updated", zap.String("problem_id", id.String()))
	return problem, nil
}

// Delete removes a problem from the catalog
func (s *ProblemService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ProblemService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("problem.id", id.String()))

	if err := s.problemRepo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("Problem deleted", zap.String("problem_id", id.String()))
	return nil
}
