// Package memory provides an in-process implementation of the repository
// interfaces. It mirrors the Postgres schema rules: unique emails, a unique
// (job, applicant) pair and cascading job deletes.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/repository"
)

var (
	_ repository.UserRepository        = (*Users)(nil)
	_ repository.JobRepository         = (*Jobs)(nil)
	_ repository.ApplicationRepository = (*Applications)(nil)
)

// Store holds all records behind a single lock.
type Store struct {
	mu           sync.RWMutex
	users        map[int64]domain.User
	jobs         map[int64]domain.Job
	applications map[int64]domain.Application
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		jobs:         make(map[int64]domain.Job),
		applications: make(map[int64]domain.Application),
	}
}

func (s *Store) Users() *Users               { return &Users{s: s} }
func (s *Store) Jobs() *Jobs                 { return &Jobs{s: s} }
func (s *Store) Applications() *Applications { return &Applications{s: s} }

// Users implements repository.UserRepository.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return domain.User{}, fmt.Errorf("create user: %w", repository.ErrConflict)
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return domain.User{}, fmt.Errorf("create user: %w: users_email_key", repository.ErrConflict)
		}
	}
	r.s.users[user.ID] = user
	return user, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("get user by email: %w", repository.ErrNotFound)
}

func (r *Users) GetByID(_ context.Context, userID int64) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.User{}, fmt.Errorf("get user by id: %w", repository.ErrNotFound)
	}
	return u, nil
}

// Jobs implements repository.JobRepository.
type Jobs struct{ s *Store }

func (r *Jobs) Create(_ context.Context, job domain.Job) (domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[job.PostedBy]; !ok {
		return domain.Job{}, fmt.Errorf("create job: %w: jobs_posted_by_fkey", repository.ErrNotFound)
	}
	if _, ok := r.s.jobs[job.ID]; ok {
		return domain.Job{}, fmt.Errorf("create job: %w", repository.ErrConflict)
	}
	job.Skills = cloneSkills(job.Skills)
	job.Poster = nil
	job.ApplicantCount = 0
	r.s.jobs[job.ID] = job
	return job, nil
}

func (r *Jobs) GetByID(_ context.Context, jobID int64) (domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	job, ok := r.s.jobs[jobID]
	if !ok {
		return domain.Job{}, fmt.Errorf("get job: %w", repository.ErrNotFound)
	}
	return r.s.readJob(job), nil
}

func (r *Jobs) Update(_ context.Context, job domain.Job) (domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.jobs[job.ID]
	if !ok {
		return domain.Job{}, fmt.Errorf("update job: %w", repository.ErrNotFound)
	}
	job.PostedBy = current.PostedBy
	job.CreatedAt = current.CreatedAt
	job.Skills = cloneSkills(job.Skills)
	job.Poster = nil
	job.ApplicantCount = 0
	r.s.jobs[job.ID] = job
	return r.s.readJob(job), nil
}

func (r *Jobs) Delete(_ context.Context, jobID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[jobID]; !ok {
		return fmt.Errorf("delete job: %w", repository.ErrNotFound)
	}
	delete(r.s.jobs, jobID)
	for id, app := range r.s.applications {
		if app.JobID == jobID {
			delete(r.s.applications, id)
		}
	}
	return nil
}

func (r *Jobs) List(_ context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	location := strings.ToLower(strings.TrimSpace(filter.Location))

	out := make([]domain.Job, 0)
	for _, job := range r.s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(job.Title), search) &&
			!strings.Contains(strings.ToLower(job.Company), search) &&
			!strings.Contains(strings.ToLower(job.Description), search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		if filter.JobType != "" && string(job.JobType) != filter.JobType {
			continue
		}
		if filter.Category != "" && job.Category != filter.Category {
			continue
		}
		if filter.ExperienceLevel != "" && string(job.ExperienceLevel) != filter.ExperienceLevel {
			continue
		}
		out = append(out, r.s.readJob(job))
	}
	sortJobs(out)
	return out, nil
}

func (r *Jobs) ListByPoster(_ context.Context, posterID int64) ([]domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Job, 0)
	for _, job := range r.s.jobs {
		if job.PostedBy == posterID {
			out = append(out, r.s.readJob(job))
		}
	}
	sortJobs(out)
	return out, nil
}

// Applications implements repository.ApplicationRepository.
type Applications struct{ s *Store }

func (r *Applications) Create(_ context.Context, app domain.Application) (domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[app.JobID]; !ok {
		return domain.Application{}, fmt.Errorf("create application: %w: applications_job_id_fkey", repository.ErrNotFound)
	}
	if _, ok := r.s.users[app.ApplicantID]; !ok {
		return domain.Application{}, fmt.Errorf("create application: %w: applications_applicant_id_fkey", repository.ErrNotFound)
	}
	for _, existing := range r.s.applications {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return domain.Application{}, fmt.Errorf("create application: %w: applications_job_applicant_key", repository.ErrConflict)
		}
	}
	app.Job = nil
	app.Applicant = nil
	r.s.applications[app.ID] = app
	return app, nil
}

func (r *Applications) GetByID(_ context.Context, applicationID int64) (domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	app, ok := r.s.applications[applicationID]
	if !ok {
		return domain.Application{}, fmt.Errorf("get application: %w", repository.ErrNotFound)
	}
	return app, nil
}

func (r *Applications) FindByJobAndApplicant(_ context.Context, jobID, applicantID int64) (domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, app := range r.s.applications {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			return app, nil
		}
	}
	return domain.Application{}, fmt.Errorf("find application: %w", repository.ErrNotFound)
}

func (r *Applications) ListByApplicant(_ context.Context, applicantID int64) ([]domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Application, 0)
	for _, app := range r.s.applications {
		if app.ApplicantID != applicantID {
			continue
		}
		if job, ok := r.s.jobs[app.JobID]; ok {
			read := r.s.readJob(job)
			app.Job = &read
		}
		out = append(out, app)
	}
	sortApplications(out)
	return out, nil
}

func (r *Applications) ListByJob(_ context.Context, jobID int64) ([]domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Application, 0)
	for _, app := range r.s.applications {
		if app.JobID != jobID {
			continue
		}
		if u, ok := r.s.users[app.ApplicantID]; ok {
			app.Applicant = &domain.Applicant{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		out = append(out, app)
	}
	sortApplications(out)
	return out, nil
}

func (r *Applications) UpdateStatus(_ context.Context, applicationID int64, status domain.ApplicationStatus) (domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	app, ok := r.s.applications[applicationID]
	if !ok {
		return domain.Application{}, fmt.Errorf("update application status: %w", repository.ErrNotFound)
	}
	app.Status = status
	r.s.applications[applicationID] = app
	return app, nil
}

func (r *Applications) Delete(_ context.Context, applicationID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.applications[applicationID]; !ok {
		return fmt.Errorf("delete application: %w", repository.ErrNotFound)
	}
	delete(r.s.applications, applicationID)
	return nil
}

// readJob attaches the poster projection and applicant count. Callers hold mu.
func (s *Store) readJob(job domain.Job) domain.Job {
	job.Skills = cloneSkills(job.Skills)
	if u, ok := s.users[job.PostedBy]; ok {
		job.Poster = &domain.Poster{ID: u.ID, Name: u.Name, Company: u.Company, Email: u.Email, Phone: u.Phone}
	}
	count := 0
	for _, app := range s.applications {
		if app.JobID == job.ID {
			count++
		}
	}
	job.ApplicantCount = count
	return job
}

func cloneSkills(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return slices.Clone(skills)
}

func sortJobs(jobs []domain.Job) {
	slices.SortFunc(jobs, func(a, b domain.Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareDesc(a.ID, b.ID)
	})
}

func sortApplications(apps []domain.Application) {
	slices.SortFunc(apps, func(a, b domain.Application) int {
		if c := b.AppliedAt.Compare(a.AppliedAt); c != 0 {
			return c
		}
		return compareDesc(a.ID, b.ID)
	})
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
