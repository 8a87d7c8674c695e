package resumes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var detailsColumns = []string{"id", "resume_id", "skills", "experience", "education", "projects", "parsed_at"}

func TestPGRepoUpsertDetailsReturnsStoredRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	parsedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	details := Details{
		ResumeID: "11111111-1111-1111-1111-111111111111",
		Skills:   []string{"Go", "SQL"},
		Experience: []Experience{
			{Company: "Acme", Role: "Engineer", Duration: "2020-2023", Description: "Built APIs"},
		},
		ParsedAt: parsedAt,
	}

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (resume_id) DO UPDATE SET")).
		WithArgs(
			sqlmock.AnyArg(), // id
			details.ResumeID,
			`["Go","SQL"]`,
			`[{"company":"Acme","role":"Engineer","duration":"2020-2023","description":"Built APIs"}]`,
			`[]`,
			`[]`,
			parsedAt,
		).
		WillReturnRows(sqlmock.NewRows(detailsColumns).AddRow(
			"details-existing",
			details.ResumeID,
			[]byte(`["Go","SQL"]`),
			[]byte(`[{"company":"Acme","role":"Engineer","duration":"2020-2023","description":"Built APIs"}]`),
			[]byte(`[]`),
			[]byte(`[]`),
			parsedAt,
		))

	saved, err := repo.UpsertDetails(context.Background(), details)
	if err != nil {
		t.Fatalf("UpsertDetails: %v", err)
	}
	if saved.ID != "details-existing" {
		t.Fatalf("expected id from RETURNING, got %q", saved.ID)
	}
	if len(saved.Skills) != 2 || len(saved.Experience) != 1 || saved.Experience[0].Company != "Acme" {
		t.Fatalf("unexpected saved details: %+v", saved)
	}
	if saved.Education == nil || saved.Projects == nil {
		t.Fatalf("expected empty sections to be non-nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetResumeNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, user_id, file_url, file_name, created_at").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetResume(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUserOrdersNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	t1 := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id ASC")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "file_url", "file_name", "created_at"}).
			AddRow("r3", "user-1", "https://x/3.pdf", "cv3.pdf", t1.Add(2*time.Hour)).
			AddRow("r2", "user-1", "https://x/2.pdf", nil, t1.Add(time.Hour)).
			AddRow("r1", "user-1", "https://x/1.pdf", "cv1.pdf", t1))

	list, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 || list[0].ID != "r3" || list[2].ID != "r1" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[1].FileName != "" || list[0].FileName != "cv3.pdf" {
		t.Fatalf("unexpected file names: %+v", list)
	}
}

func TestPGRepoDeleteResumeRemovesDetailsFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resume_details WHERE resume_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resumes WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteResume(context.Background(), "r1"); err != nil {
		t.Fatalf("DeleteResume: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteResumeRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resume_details")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resumes")).
		WithArgs("r1").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	if err := repo.DeleteResume(context.Background(), "r1"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateResumeFillsDefaults(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(sqlmock.AnyArg(), "user-1", "https://x/cv.pdf", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := repo.CreateResume(context.Background(), Resume{UserID: "user-1", FileURL: "https://x/cv.pdf"})
	if err != nil {
		t.Fatalf("CreateResume: %v", err)
	}
	if res.ID == "" || res.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be filled: %+v", res)
	}
}

func TestPGRepoUpsertDetailsMissingResumeIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO resume_details")).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	_, err := repo.UpsertDetails(context.Background(), Details{ResumeID: "11111111-1111-1111-1111-111111111111"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertDetailsOtherErrorsPassThrough(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO resume_details")).
		WillReturnError(&pgconn.PgError{Code: "53300", Message: "too many connections"})

	_, err := repo.UpsertDetails(context.Background(), Details{ResumeID: "11111111-1111-1111-1111-111111111111"})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected raw database error, got %v", err)
	}
}
