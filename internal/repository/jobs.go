package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbiznis/jobboard/internal/domain"
)

// PostgresJobRepo implements JobRepository.
type PostgresJobRepo struct {
	db *pgxpool.Pool
}

func NewPostgresJobRepo(pool *pgxpool.Pool) *PostgresJobRepo {
	return &PostgresJobRepo{db: pool}
}

const jobColumns = `j.id, j.title, j.company, j.location, j.job_type, j.salary, j.description, j.requirements,
	j.benefits, j.experience_level, j.category, j.skills, j.posted_by, j.status, j.created_at, j.deadline`

// jobReadColumns extends jobColumns with the poster projection and the
// applicant count derived from the applications table.
const jobReadColumns = jobColumns + `,
	u.name, u.company, u.email, u.phone,
	(SELECT COUNT(1) FROM applications a WHERE a.job_id = j.id)`

const jobReadFrom = ` FROM jobs j JOIN users u ON u.id = j.posted_by`

const insertJobSQL = `INSERT INTO jobs (id, title, company, location, job_type, salary, description, requirements,
	benefits, experience_level, category, skills, posted_by, status, created_at, deadline)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

func (r *PostgresJobRepo) Create(ctx context.Context, job domain.Job) (domain.Job, error) {
	if job.Skills == nil {
		job.Skills = []string{}
	}
	_, err := r.db.Exec(ctx, insertJobSQL,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		string(job.JobType),
		job.Salary,
		job.Description,
		job.Requirements,
		job.Benefits,
		string(job.ExperienceLevel),
		job.Category,
		job.Skills,
		job.PostedBy,
		string(job.Status),
		job.CreatedAt,
		job.Deadline,
	)
	if err != nil {
		return domain.Job{}, translateError("create job", err)
	}
	return job, nil
}

func (r *PostgresJobRepo) GetByID(ctx context.Context, jobID int64) (domain.Job, error) {
	const query = `SELECT ` + jobReadColumns + jobReadFrom + ` WHERE j.id = $1`
	job, err := scanJobRead(r.db.QueryRow(ctx, query, jobID))
	if err != nil {
		return domain.Job{}, translateError("get job", err)
	}
	return job, nil
}

const updateJobSQL = `UPDATE jobs SET
	title = $2, company = $3, location = $4, job_type = $5, salary = $6, description = $7,
	requirements = $8, benefits = $9, experience_level = $10, category = $11, skills = $12,
	status = $13, deadline = $14
WHERE id = $1`

func (r *PostgresJobRepo) Update(ctx context.Context, job domain.Job) (domain.Job, error) {
	if job.Skills == nil {
		job.Skills = []string{}
	}
	tag, err := r.db.Exec(ctx, updateJobSQL,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		string(job.JobType),
		job.Salary,
		job.Description,
		job.Requirements,
		job.Benefits,
		string(job.ExperienceLevel),
		job.Category,
		job.Skills,
		string(job.Status),
		job.Deadline,
	)
	if err != nil {
		return domain.Job{}, translateError("update job", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Job{}, fmt.Errorf("update job: %w", ErrNotFound)
	}
	return r.GetByID(ctx, job.ID)
}

func (r *PostgresJobRepo) Delete(ctx context.Context, jobID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return translateError("delete job", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete job: %w", ErrNotFound)
	}
	return nil
}

func (r *PostgresJobRepo) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "j.status = "+arg(string(filter.Status)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg(escapeLike(s))
		conds = append(conds, fmt.Sprintf("(j.title ILIKE '%%' || %[1]s || '%%' ESCAPE '\\' OR j.company ILIKE '%%' || %[1]s || '%%' ESCAPE '\\' OR j.description ILIKE '%%' || %[1]s || '%%' ESCAPE '\\')", p))
	}
	if s := strings.TrimSpace(filter.Location); s != "" {
		conds = append(conds, fmt.Sprintf("j.location ILIKE '%%' || %s || '%%' ESCAPE '\\'", arg(escapeLike(s))))
	}
	if filter.JobType != "" {
		conds = append(conds, "j.job_type = "+arg(filter.JobType))
	}
	if filter.Category != "" {
		conds = append(conds, "j.category = "+arg(filter.Category))
	}
	if filter.ExperienceLevel != "" {
		conds = append(conds, "j.experience_level = "+arg(filter.ExperienceLevel))
	}

	query := `SELECT ` + jobReadColumns + jobReadFrom
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY j.created_at DESC, j.id DESC"

	return r.queryJobs(ctx, "list jobs", query, args...)
}

func (r *PostgresJobRepo) ListByPoster(ctx context.Context, posterID int64) ([]domain.Job, error) {
	const query = `SELECT ` + jobReadColumns + jobReadFrom + ` WHERE j.posted_by = $1 ORDER BY j.created_at DESC, j.id DESC`
	return r.queryJobs(ctx, "list jobs by poster", query, posterID)
}

func (r *PostgresJobRepo) queryJobs(ctx context.Context, op, query string, args ...any) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	jobs := make([]domain.Job, 0)
	for rows.Next() {
		job, err := scanJobRead(rows)
		if err != nil {
			return nil, translateError(op, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}
	return jobs, nil
}

// jobScan holds the scan targets for jobColumns so the same layout can be
// embedded in application reads.
type jobScan struct {
	job             domain.Job
	jobType         string
	experienceLevel string
	status          string
	deadline        *time.Time
}

func (s *jobScan) targets() []any {
	return []any{
		&s.job.ID,
		&s.job.Title,
		&s.job.Company,
		&s.job.Location,
		&s.jobType,
		&s.job.Salary,
		&s.job.Description,
		&s.job.Requirements,
		&s.job.Benefits,
		&s.experienceLevel,
		&s.job.Category,
		&s.job.Skills,
		&s.job.PostedBy,
		&s.status,
		&s.job.CreatedAt,
		&s.deadline,
	}
}

func (s *jobScan) result() domain.Job {
	job := s.job
	job.JobType = domain.JobType(s.jobType)
	job.ExperienceLevel = domain.ExperienceLevel(s.experienceLevel)
	job.Status = domain.JobStatus(s.status)
	job.Deadline = s.deadline
	if job.Skills == nil {
		job.Skills = []string{}
	}
	return job
}

// posterScan holds the scan targets for the poster projection and applicant count.
type posterScan struct {
	poster domain.Poster
	count  int64
}

func (p *posterScan) targets() []any {
	return []any{&p.poster.Name, &p.poster.Company, &p.poster.Email, &p.poster.Phone, &p.count}
}

func scanJobRead(row pgx.Row) (domain.Job, error) {
	var (
		js jobScan
		ps posterScan
	)
	if err := row.Scan(append(js.targets(), ps.targets()...)...); err != nil {
		return domain.Job{}, err
	}
	job := js.result()
	poster := ps.poster
	poster.ID = job.PostedBy
	job.Poster = &poster
	job.ApplicantCount = int(ps.count)
	return job, nil
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
