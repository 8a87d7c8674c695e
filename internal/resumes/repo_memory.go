package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	resumes map[string]Resume
	details map[string]Details // resumeID -> details
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes: make(map[string]Resume),
		details: make(map[string]Details),
	}
}

// CreateResume stores a resume.
func (r *MemoryRepo) CreateResume(ctx context.Context, res Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumes[res.ID] = res
	return res, nil
}

// GetResume returns a resume by id.
func (r *MemoryRepo) GetResume(ctx context.Context, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resumes[resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return res, nil
}

// ListByUser returns a user's resumes newest-first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Resume{}
	for _, res := range r.resumes {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpsertDetails stores details for an existing resume, keeping the id of a
// previous row.
func (r *MemoryRepo) UpsertDetails(ctx context.Context, d Details) (Details, error) {
	if err := ctx.Err(); err != nil {
		return Details{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resumes[d.ResumeID]; !ok {
		return Details{}, ErrNotFound
	}
	d = d.Normalize()
	if prev, ok := r.details[d.ResumeID]; ok {
		d.ID = prev.ID
	} else if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ParsedAt.IsZero() {
		d.ParsedAt = time.Now().UTC()
	}
	r.details[d.ResumeID] = d
	return d, nil
}

// GetDetails returns the details stored for a resume.
func (r *MemoryRepo) GetDetails(ctx context.Context, resumeID string) (Details, error) {
	if err := ctx.Err(); err != nil {
		return Details{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.details[resumeID]
	if !ok {
		return Details{}, ErrNotFound
	}
	return d, nil
}

// DeleteResume removes a resume and its details.
func (r *MemoryRepo) DeleteResume(ctx context.Context, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resumes[resumeID]; !ok {
		return ErrNotFound
	}
	delete(r.details, resumeID)
	delete(r.resumes, resumeID)
	return nil
}

// DetailsCount reports how many details rows are stored.
func (r *MemoryRepo) DetailsCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.details)
}

var (
	_ Repo = (*MemoryRepo)(nil)
	_ Repo = (*PGRepo)(nil)
)
