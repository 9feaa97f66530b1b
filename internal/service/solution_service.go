package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/domain"
	"github.com/caseforge/backend/internal/infrastructure"
)

// SolutionService handles solution submissions. A submission is the only
// write that fans out: it appends to the solution store, then (for
// authenticated users) triggers the progress tracker for the owning
// user+domain. Anonymous submissions are stored but never touch progress.
type SolutionService struct {
	solutionRepo    domain.SolutionRepository
	problemRepo     domain.ProblemRepository
	progressService *ProgressService
	metrics         *infrastructure.TelemetryMetrics
	tracer          trace.Tracer
	logger          *zap.Logger
}

// NewSolutionService creates a new solution service
func NewSolutionService(
	solutionRepo domain.SolutionRepository,
	problemRepo domain.ProblemRepository,
	progressService *ProgressService,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *SolutionService {
	return &SolutionService{
		solutionRepo:    solutionRepo,
		problemRepo:     problemRepo,
		progressService: progressService,
		metrics:         metrics,
		tracer:          tracer,
		logger:          logger,
	}
}

// Submit validates and stores a solution. The referenced problem must exist;
// a resolution failure surfaces domain.ErrProblemNotFound and nothing is
// written. userID is nil for anonymous submissions.
func (s *SolutionService) Submit(ctx context.Context, req *domain.SubmitSolutionRequest, userID *uuid.UUID) (*domain.Solution, error) {
	ctx, span := s.tracer.Start(ctx, "SolutionService.Submit")
	defer span.End()

	problemID, err := uuid.Parse(req.ProblemID)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	span.SetAttributes(attribute.String("problem.id", problemID.String()))

	// Referential integrity: the solution must name an existing problem.
	problem, err := s.problemRepo.FindByID(problemID)
	if err != nil {
		return nil, err
	}

	solution := &domain.Solution{
		ProblemID:        problem.ID,
		UserID:           userID,
		Content:          req.Content,
		Domain:           problem.Domain,
		Score:            req.Score,
		TimeTakenMinutes: req.TimeTakenMinutes,
		SubmittedAt:      time.Now(),
	}

	if err := s.solutionRepo.Create(solution); err != nil {
		s.logger.Error("Failed to store solution",
			zap.String("problem_id", problem.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SolutionsSubmitted.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("domain", problem.Domain),
				attribute.Bool("anonymous", userID == nil),
			))
	}

	if userID != nil {
		if _, err := s.progressService.RecordSubmission(ctx, *userID, problem.Domain, req.Score, req.TimeTakenMinutes); err != nil {
			// The solution row is already committed and the store is
			// append-only; surface the tracker failure to the caller.
			s.logger.Error("Failed to update domain progress after submission",
				zap.String("user_id", userID.String()),
				zap.String("domain", problem.Domain),
				zap.Error(err),
			)
			return nil, err
		}
	}

	s.logger.Info("Solution submitted",
		zap.String("solution_id", solution.ID.String()),
		zap.String("problem_id", problem.ID.String()),
		zap.String("domain", problem.Domain),
		zap.Bool("anonymous", userID == nil),
	)

	return solution, nil
}

// GetByID returns a single solution
func (s *SolutionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Solution, error) {
	ctx, span := s.tracer.Start(ctx, "SolutionService.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("solution.id", id.String()))
	return s.solutionRepo.FindByID(id)
}

// ListByUser returns a user's solutions, newest first
func (s *SolutionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Solution, error) {
	ctx, span := s.tracer.Start(ctx, "SolutionService.ListByUser")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID.String()))
	return s.solutionRepo.FindByUserID(userID)
}
