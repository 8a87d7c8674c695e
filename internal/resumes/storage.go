package resumes

import (
	"context"
	"errors"
	"time"
)

// Downloader retrieves the raw bytes behind a file URL.
type Downloader interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Storage owns resume persistence and file retrieval.
type Storage struct {
	Repo  Repo
	Files Downloader
	Now   func() time.Time
}

// NewStorage constructs a Storage.
func NewStorage(repo Repo, files Downloader) *Storage {
	return &Storage{Repo: repo, Files: files, Now: time.Now}
}

// DownloadFile returns the bytes of the file at fileURL.
func (s *Storage) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	if s.Files == nil {
		return nil, &DownloadError{URL: fileURL, Err: errors.New("no file fetcher configured")}
	}
	data, err := s.Files.Fetch(ctx, fileURL)
	if err != nil {
		return nil, &DownloadError{URL: fileURL, Err: err}
	}
	return data, nil
}

// GetResume returns a resume owned by userID.
func (s *Storage) GetResume(ctx context.Context, resumeID, userID string) (Resume, error) {
	res, err := s.Repo.GetResume(ctx, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, &StorageError{Op: "get_resume", Err: err}
	}
	if res.UserID != userID {
		return Resume{}, ErrUnauthorized
	}
	return res, nil
}

// SaveDetails creates or replaces the details for a resume and returns the
// stored row.
func (s *Storage) SaveDetails(ctx context.Context, resumeID string, d Details) (Details, error) {
	d.ResumeID = resumeID
	d.ID = ""
	d.ParsedAt = s.now()
	saved, err := s.Repo.UpsertDetails(ctx, d.Normalize())
	if err != nil {
		return Details{}, &StorageError{Op: "save_details", Err: err}
	}
	return saved, nil
}

// GetDetails returns the details of a resume owned by userID.
func (s *Storage) GetDetails(ctx context.Context, resumeID, userID string) (Details, error) {
	if _, err := s.GetResume(ctx, resumeID, userID); err != nil {
		return Details{}, err
	}
	d, err := s.Repo.GetDetails(ctx, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Details{}, ErrNotFound
		}
		return Details{}, &StorageError{Op: "get_details", Err: err}
	}
	return d, nil
}

// GetResumeWithDetails returns a resume along with its details, which are nil
// when the resume has not been analyzed.
func (s *Storage) GetResumeWithDetails(ctx context.Context, resumeID, userID string) (ResumeWithDetails, error) {
	res, err := s.GetResume(ctx, resumeID, userID)
	if err != nil {
		return ResumeWithDetails{}, err
	}
	out := ResumeWithDetails{Resume: res}
	d, err := s.Repo.GetDetails(ctx, resumeID)
	switch {
	case err == nil:
		out.Details = &d
	case errors.Is(err, ErrNotFound):
	default:
		return ResumeWithDetails{}, &StorageError{Op: "get_details", Err: err}
	}
	return out, nil
}

// ListResumes returns a user's resumes, newest first.
func (s *Storage) ListResumes(ctx context.Context, userID string) ([]Resume, error) {
	list, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list_resumes", Err: err}
	}
	if list == nil {
		list = []Resume{}
	}
	return list, nil
}

// DeleteResume removes a resume owned by userID together with its details.
func (s *Storage) DeleteResume(ctx context.Context, resumeID, userID string) error {
	if _, err := s.GetResume(ctx, resumeID, userID); err != nil {
		return err
	}
	if err := s.Repo.DeleteResume(ctx, resumeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "delete_resume", Err: err}
	}
	return nil
}

func (s *Storage) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
