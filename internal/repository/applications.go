package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbiznis/jobboard/internal/domain"
)

// PostgresApplicationRepo implements ApplicationRepository.
type PostgresApplicationRepo struct {
	db *pgxpool.Pool
}

func NewPostgresApplicationRepo(pool *pgxpool.Pool) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: pool}
}

const applicationColumns = `ap.id, ap.job_id, ap.applicant_id, ap.cover_letter, ap.resume_url, ap.status, ap.applied_at`

const insertApplicationSQL = `INSERT INTO applications AS ap (id, job_id, applicant_id, cover_letter, resume_url, status, applied_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + applicationColumns

func (r *PostgresApplicationRepo) Create(ctx context.Context, app domain.Application) (domain.Application, error) {
	row := r.db.QueryRow(ctx, insertApplicationSQL,
		app.ID,
		app.JobID,
		app.ApplicantID,
		app.CoverLetter,
		app.ResumeURL,
		string(app.Status),
		app.AppliedAt,
	)
	created, err := scanApplication(row)
	if err != nil {
		return domain.Application{}, translateError("create application", err)
	}
	return created, nil
}

func (r *PostgresApplicationRepo) GetByID(ctx context.Context, applicationID int64) (domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications ap WHERE ap.id = $1`
	app, err := scanApplication(r.db.QueryRow(ctx, query, applicationID))
	if err != nil {
		return domain.Application{}, translateError("get application", err)
	}
	return app, nil
}

func (r *PostgresApplicationRepo) FindByJobAndApplicant(ctx context.Context, jobID, applicantID int64) (domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications ap WHERE ap.job_id = $1 AND ap.applicant_id = $2`
	app, err := scanApplication(r.db.QueryRow(ctx, query, jobID, applicantID))
	if err != nil {
		return domain.Application{}, translateError("find application", err)
	}
	return app, nil
}

func (r *PostgresApplicationRepo) ListByApplicant(ctx context.Context, applicantID int64) ([]domain.Application, error) {
	const query = `SELECT ` + applicationColumns + `, ` + jobReadColumns + `
FROM applications ap
JOIN jobs j ON j.id = ap.job_id
JOIN users u ON u.id = j.posted_by
WHERE ap.applicant_id = $1
ORDER BY ap.applied_at DESC, ap.id DESC`

	rows, err := r.db.Query(ctx, query, applicantID)
	if err != nil {
		return nil, translateError("list applications by applicant", err)
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	for rows.Next() {
		var (
			as appScan
			js jobScan
			ps posterScan
		)
		targets := append(as.targets(), js.targets()...)
		targets = append(targets, ps.targets()...)
		if err := rows.Scan(targets...); err != nil {
			return nil, translateError("list applications by applicant", err)
		}
		app := as.result()
		job := js.result()
		poster := ps.poster
		poster.ID = job.PostedBy
		job.Poster = &poster
		job.ApplicantCount = int(ps.count)
		app.Job = &job
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list applications by applicant", err)
	}
	return apps, nil
}

func (r *PostgresApplicationRepo) ListByJob(ctx context.Context, jobID int64) ([]domain.Application, error) {
	const query = `SELECT ` + applicationColumns + `, u.name, u.email
FROM applications ap
JOIN users u ON u.id = ap.applicant_id
WHERE ap.job_id = $1
ORDER BY ap.applied_at DESC, ap.id DESC`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, translateError("list applications by job", err)
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	for rows.Next() {
		var (
			as        appScan
			applicant domain.Applicant
		)
		if err := rows.Scan(append(as.targets(), &applicant.Name, &applicant.Email)...); err != nil {
			return nil, translateError("list applications by job", err)
		}
		app := as.result()
		applicant.ID = app.ApplicantID
		app.Applicant = &applicant
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list applications by job", err)
	}
	return apps, nil
}

func (r *PostgresApplicationRepo) UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (domain.Application, error) {
	const query = `UPDATE applications AS ap SET status = $2 WHERE ap.id = $1 RETURNING ` + applicationColumns
	app, err := scanApplication(r.db.QueryRow(ctx, query, applicationID, string(status)))
	if err != nil {
		return domain.Application{}, translateError("update application status", err)
	}
	return app, nil
}

func (r *PostgresApplicationRepo) Delete(ctx context.Context, applicationID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, applicationID)
	if err != nil {
		return translateError("delete application", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete application: %w", ErrNotFound)
	}
	return nil
}

type appScan struct {
	app    domain.Application
	status string
}

func (s *appScan) targets() []any {
	return []any{
		&s.app.ID,
		&s.app.JobID,
		&s.app.ApplicantID,
		&s.app.CoverLetter,
		&s.app.ResumeURL,
		&s.status,
		&s.app.AppliedAt,
	}
}

func (s *appScan) result() domain.Application {
	app := s.app
	app.Status = domain.ApplicationStatus(s.status)
	return app
}

func scanApplication(row pgx.Row) (domain.Application, error) {
	var s appScan
	if err := row.Scan(s.targets()...); err != nil {
		return domain.Application{}, err
	}
	return s.result(), nil
}
