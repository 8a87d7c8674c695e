package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// foreignKeyViolation is the Postgres SQLSTATE for a missing parent row.
const foreignKeyViolation = "23503"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateResume inserts a resume row. Missing id and created_at are filled in.
func (r *PGRepo) CreateResume(ctx context.Context, res Resume) (Resume, error) {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    file_url,
    file_name,
    created_at
) VALUES ($1, $2, $3, $4, $5)`

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	var fileName sql.NullString
	if res.FileName != "" {
		fileName = sql.NullString{String: res.FileName, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query, res.ID, res.UserID, res.FileURL, fileName, res.CreatedAt)
	if err != nil {
		return Resume{}, err
	}
	return res, nil
}

// GetResume fetches a resume by id.
func (r *PGRepo) GetResume(ctx context.Context, resumeID string) (Resume, error) {
	const query = `
SELECT id, user_id, file_url, file_name, created_at
FROM resumes
WHERE id = $1`

	res, err := scanResume(r.DB.QueryRowContext(ctx, query, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByUser lists a user's resumes newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	const query = `
SELECT id, user_id, file_url, file_name, created_at
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertDetails inserts details for a resume or replaces the existing row.
// The id of an existing row is kept.
func (r *PGRepo) UpsertDetails(ctx context.Context, d Details) (Details, error) {
	const query = `
INSERT INTO resume_details (
    id,
    resume_id,
    skills,
    experience,
    education,
    projects,
    parsed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (resume_id) DO UPDATE SET
    skills = EXCLUDED.skills,
    experience = EXCLUDED.experience,
    education = EXCLUDED.education,
    projects = EXCLUDED.projects,
    parsed_at = EXCLUDED.parsed_at
RETURNING id, resume_id, skills, experience, education, projects, parsed_at`

	d = d.Normalize()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ParsedAt.IsZero() {
		d.ParsedAt = time.Now().UTC()
	}

	skills, experience, education, projects, err := marshalSections(d)
	if err != nil {
		return Details{}, err
	}

	saved, err := scanDetails(r.DB.QueryRowContext(
		ctx,
		query,
		d.ID,
		d.ResumeID,
		skills,
		experience,
		education,
		projects,
		d.ParsedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			// resume deleted while it was being analyzed
			return Details{}, ErrNotFound
		}
		return Details{}, err
	}
	return saved, nil
}

// GetDetails fetches the details row for a resume.
func (r *PGRepo) GetDetails(ctx context.Context, resumeID string) (Details, error) {
	const query = `
SELECT id, resume_id, skills, experience, education, projects, parsed_at
FROM resume_details
WHERE resume_id = $1`

	d, err := scanDetails(r.DB.QueryRowContext(ctx, query, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Details{}, ErrNotFound
		}
		return Details{}, err
	}
	return d, nil
}

// DeleteResume removes a resume and its details in one transaction.
func (r *PGRepo) DeleteResume(ctx context.Context, resumeID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_details WHERE resume_id = $1`, resumeID); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, resumeID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var fileName sql.NullString
	if err := row.Scan(&res.ID, &res.UserID, &res.FileURL, &fileName, &res.CreatedAt); err != nil {
		return Resume{}, err
	}
	if fileName.Valid {
		res.FileName = fileName.String
	}
	return res, nil
}

func scanDetails(row rowScanner) (Details, error) {
	var d Details
	var skills, experience, education, projects []byte
	if err := row.Scan(&d.ID, &d.ResumeID, &skills, &experience, &education, &projects, &d.ParsedAt); err != nil {
		return Details{}, err
	}
	if err := unmarshalSection(skills, &d.Skills, "skills"); err != nil {
		return Details{}, err
	}
	if err := unmarshalSection(experience, &d.Experience, "experience"); err != nil {
		return Details{}, err
	}
	if err := unmarshalSection(education, &d.Education, "education"); err != nil {
		return Details{}, err
	}
	if err := unmarshalSection(projects, &d.Projects, "projects"); err != nil {
		return Details{}, err
	}
	return d.Normalize(), nil
}

func marshalSections(d Details) (string, string, string, string, error) {
	skills, err := json.Marshal(d.Skills)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal skills: %w", err)
	}
	experience, err := json.Marshal(d.Experience)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal experience: %w", err)
	}
	education, err := json.Marshal(d.Education)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal education: %w", err)
	}
	projects, err := json.Marshal(d.Projects)
	if err != nil {
		return "", "", "", "", fmt.Errorf("marshal projects: %w", err)
	}
	return string(skills), string(experience), string(education), string(projects), nil
}

func unmarshalSection(raw []byte, dest any, name string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
