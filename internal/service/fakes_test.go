package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/caseforge/backend/internal/domain"
)

// fakeProgressRepo is an in-memory DomainProgressRepository. Mutate holds a
// single lock for the whole load-apply-store cycle, giving the same
// serialization guarantee as the row-locked SQL implementation.
type fakeProgressRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.DomainProgress

	lastLimit int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*domain.DomainProgress)}
}

func progressKey(userID uuid.UUID, domainName string) string {
	return userID.String() + "|" + domainName
}

func (r *fakeProgressRepo) FindByUserAndDomain(userID uuid.UUID, domainName string) (*domain.DomainProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[progressKey(userID, domainName)]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeProgressRepo) FindByUserID(userID uuid.UUID) ([]domain.DomainProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DomainProgress
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

func (r *fakeProgressRepo) Mutate(ctx context.Context, userID uuid.UUID, domainName string, fn func(p *domain.DomainProgress) error) (*domain.DomainProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(userID, domainName)
	row, ok := r.rows[key]
	if !ok {
		row = domain.NewDomainProgress(userID, domainName)
		row.ID = uuid.New()
		r.rows[key] = row
	}
	if err := fn(row); err != nil {
		return nil, err
	}
	copied := *row
	return &copied, nil
}

func (r *fakeProgressRepo) FindTopByDomain(domainName string, limit int) ([]domain.DomainProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []domain.DomainProgress
	for _, row := range r.rows {
		if row.Domain == domainName {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExperiencePoints != out[j].ExperiencePoints {
			return out[i].ExperiencePoints > out[j].ExperiencePoints
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProgressRepo) CountDistinctUsers() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{})
	for _, row := range r.rows {
		seen[row.UserID] = struct{}{}
	}
	return int64(len(seen)), nil
}

// fakeProblemRepo is an in-memory ProblemRepository
type fakeProblemRepo struct {
	mu       sync.Mutex
	problems map[uuid.UUID]*domain.Problem
}

func newFakeProblemRepo(problems ...*domain.Problem) *fakeProblemRepo {
	r := &fakeProblemRepo{problems: make(map[uuid.UUID]*domain.Problem)}
	for _, p := range problems {
		r.problems[p.ID] = p
	}
	return r
}

func (r *fakeProblemRepo) Create(problem *domain.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if problem.ID == uuid.Nil {
		problem.ID = uuid.New()
	}
	r.problems[problem.ID] = problem
	return nil
}

func (r *fakeProblemRepo) CreateBatch(problems []domain.Problem) error {
	for i := range problems {
		if err := r.Create(&problems[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProblemRepo) FindByID(id uuid.UUID) (*domain.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.problems[id]
	if !ok {
		return nil, domain.ErrProblemNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProblemRepo) FindAll(filter domain.ProblemFilter) ([]domain.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Problem
	for _, p := range r.problems {
		if filter.Domain != "" && p.Domain != filter.Domain {
			continue
		}
		if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Company != "" && p.Company != filter.Company {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProblemRepo) Update(problem *domain.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[problem.ID]; !ok {
		return domain.ErrProblemNotFound
	}
	copied := *problem
	r.problems[problem.ID] = &copied
	return nil
}

func (r *fakeProblemRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[id]; !ok {
		return domain.ErrProblemNotFound
	}
	delete(r.problems, id)
	return nil
}

func (r *fakeProblemRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.problems)), nil
}

func (r *fakeProblemRepo) CountByDomain() ([]domain.DomainCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDomain := make(map[string]int64)
	for _, p := range r.problems {
		byDomain[p.Domain]++
	}
	var out []domain.DomainCount
	for name, count := range byDomain {
		out = append(out, domain.DomainCount{Domain: name, Count: count})
	}
	return out, nil
}

func (r *fakeProblemRepo) CountByDifficulty(domainName string) ([]domain.DifficultyCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDifficulty := make(map[domain.Difficulty]int64)
	for _, p := range r.problems {
		if domainName != "" && p.Domain != domainName {
			continue
		}
		byDifficulty[p.Difficulty]++
	}
	var out []domain.DifficultyCount
	for d, count := range byDifficulty {
		out = append(out, domain.DifficultyCount{Difficulty: d, Count: count})
	}
	return out, nil
}

func (r *fakeProblemRepo) CountByCategory(domainName string) ([]domain.CategoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCategory := make(map[string]int64)
	for _, p := range r.problems {
		if domainName != "" && p.Domain != domainName {
			continue
		}
		byCategory[p.Category]++
	}
	var out []domain.CategoryCount
	for c, count := range byCategory {
		out = append(out, domain.CategoryCount{Category: c, Count: count})
	}
	return out, nil
}

// fakeSolutionRepo is an in-memory SolutionRepository
type fakeSolutionRepo struct {
	mu        sync.Mutex
	solutions []domain.Solution
}

func newFakeSolutionRepo() *fakeSolutionRepo {
	return &fakeSolutionRepo{}
}

func (r *fakeSolutionRepo) Create(solution *domain.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if solution.ID == uuid.Nil {
		solution.ID = uuid.New()
	}
	r.solutions = append(r.solutions, *solution)
	return nil
}

func (r *fakeSolutionRepo) FindByID(id uuid.UUID) (*domain.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.solutions {
		if r.solutions[i].ID == id {
			copied := r.solutions[i]
			return &copied, nil
		}
	}
	return nil, domain.ErrSolutionNotFound
}

func (r *fakeSolutionRepo) FindByUserID(userID uuid.UUID) ([]domain.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Solution
	for _, s := range r.solutions {
		if s.UserID != nil && *s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.solutions)), nil
}

func (r *fakeSolutionRepo) CountByDomain(domainName string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.solutions {
		if s.Domain == domainName {
			count++
		}
	}
	return count, nil
}

func (r *fakeSolutionRepo) stored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.solutions)
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDs(ids []uuid.UUID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}
