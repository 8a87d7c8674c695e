package resumes

import "context"

// Repo defines persistence operations for resumes and their details.
// Lookups of missing rows return ErrNotFound.
type Repo interface {
	CreateResume(ctx context.Context, r Resume) (Resume, error)
	GetResume(ctx context.Context, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	UpsertDetails(ctx context.Context, d Details) (Details, error)
	GetDetails(ctx context.Context, resumeID string) (Details, error)
	DeleteResume(ctx context.Context, resumeID string) error
}
