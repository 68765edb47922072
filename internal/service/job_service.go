package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/repository"
)

// JobInput is the payload for creating a posting. Skills arrive already
// split; the HTTP layer accepts both the comma separated and the list form.
type JobInput struct {
	Title           string     `json:"title" validate:"required"`
	Company         string     `json:"company"`
	Location        string     `json:"location" validate:"required"`
	JobType         string     `json:"jobType" validate:"required"`
	Salary          string     `json:"salary" validate:"required"`
	Description     string     `json:"description" validate:"required"`
	Requirements    string     `json:"requirements" validate:"required"`
	Benefits        string     `json:"benefits"`
	ExperienceLevel string     `json:"experienceLevel" validate:"required"`
	Category        string     `json:"category" validate:"required"`
	Skills          []string   `json:"skills"`
	Deadline        *time.Time `json:"deadline"`
}

// JobPatch is a partial update. Nil fields are left untouched.
type JobPatch struct {
	Title           *string
	Company         *string
	Location        *string
	JobType         *string
	Salary          *string
	Description     *string
	Requirements    *string
	Benefits        *string
	ExperienceLevel *string
	Category        *string
	Skills          *[]string
	Status          *string
	Deadline        *time.Time
	ClearDeadline   bool
}

// JobFilterInput carries the raw list query.
type JobFilterInput struct {
	Search          string
	Location        string
	JobType         string
	Category        string
	ExperienceLevel string
}

// JobService manages postings.
type JobService struct {
	instrumentation
	jobs      repository.JobRepository
	users     repository.UserRepository
	snowflake *snowflake.Node
}

// NewJobService wires dependencies.
func NewJobService(jobs repository.JobRepository, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) *JobService {
	return &JobService{
		instrumentation: newInstrumentation(logger),
		jobs:            jobs,
		users:           users,
		snowflake:       node,
	}
}

// List returns active postings matching the filter, newest first. Poster
// contact details are omitted.
func (s *JobService) List(ctx context.Context, in JobFilterInput) ([]JobView, error) {
	ctx, span := s.startSpan(ctx, "JobService.List")
	defer span.End()

	filter := domain.JobFilter{
		Search:          strings.TrimSpace(in.Search),
		Location:        strings.TrimSpace(in.Location),
		JobType:         strings.TrimSpace(in.JobType),
		Category:        strings.TrimSpace(in.Category),
		ExperienceLevel: strings.TrimSpace(in.ExperienceLevel),
		Status:          domain.JobStatusActive,
	}
	if level, ok := domain.ParseExperienceLevel(filter.ExperienceLevel); ok {
		filter.ExperienceLevel = string(level)
	}

	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list jobs: %w", err))
	}
	return newJobViews(jobs, hideContact), nil
}

// Get returns a posting in any status, with poster contact details.
func (s *JobService) Get(ctx context.Context, jobID int64) (JobView, error) {
	ctx, span := s.startSpan(ctx, "JobService.Get")
	defer span.End()

	job, err := s.load(ctx, jobID)
	if err != nil {
		return JobView{}, fail(span, err)
	}
	return newJobView(job, showContact), nil
}

// Create stores a new posting owned by the calling employer.
func (s *JobService) Create(ctx context.Context, identity domain.Identity, in JobInput) (JobView, error) {
	ctx, span := s.startSpan(ctx, "JobService.Create")
	defer span.End()

	if !identity.IsEmployer() {
		return JobView{}, fail(span, newError(KindForbidden, "only employers can post jobs"))
	}

	trimJobInput(&in)
	if err := validateInput(in); err != nil {
		return JobView{}, fail(span, err)
	}
	jobType, ok := domain.ParseJobType(in.JobType)
	if !ok {
		return JobView{}, fail(span, Validation("jobType %q is not a valid job type", in.JobType))
	}
	level, ok := domain.ParseExperienceLevel(in.ExperienceLevel)
	if !ok {
		return JobView{}, fail(span, Validation("experienceLevel %q is not a valid experience level", in.ExperienceLevel))
	}

	if in.Company == "" {
		poster, err := s.users.GetByID(ctx, identity.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return JobView{}, fail(span, newError(KindForbidden, "only employers can post jobs"))
		}
		if err != nil {
			return JobView{}, fail(span, fmt.Errorf("load poster: %w", err))
		}
		in.Company = poster.Company
	}
	if in.Company == "" {
		return JobView{}, fail(span, Validation("company is required"))
	}

	job := domain.Job{
		ID:              s.snowflake.Generate().Int64(),
		Title:           in.Title,
		Company:         in.Company,
		Location:        in.Location,
		JobType:         jobType,
		Salary:          in.Salary,
		Description:     in.Description,
		Requirements:    in.Requirements,
		Benefits:        in.Benefits,
		ExperienceLevel: level,
		Category:        in.Category,
		Skills:          cleanSkills(in.Skills),
		PostedBy:        identity.UserID,
		Status:          domain.JobStatusActive,
		CreatedAt:       time.Now().UTC(),
		Deadline:        in.Deadline,
	}

	if _, err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return JobView{}, fail(span, newError(KindForbidden, "only employers can post jobs"))
		}
		return JobView{}, fail(span, fmt.Errorf("create job: %w", err))
	}

	created, err := s.load(ctx, job.ID)
	if err != nil {
		return JobView{}, fail(span, err)
	}
	s.audit("job.created", "job_id", job.ID, "user_id", identity.UserID)
	return newJobView(created, showContact), nil
}

// Update merges the supplied fields into a posting owned by the caller.
func (s *JobService) Update(ctx context.Context, identity domain.Identity, jobID int64, patch JobPatch) (JobView, error) {
	ctx, span := s.startSpan(ctx, "JobService.Update")
	defer span.End()

	job, err := s.owned(ctx, identity, jobID)
	if err != nil {
		return JobView{}, fail(span, err)
	}
	if err := applyPatch(&job, patch); err != nil {
		return JobView{}, fail(span, err)
	}

	updated, err := s.jobs.Update(ctx, job)
	if errors.Is(err, repository.ErrNotFound) {
		return JobView{}, fail(span, newError(KindNotFound, "job not found"))
	}
	if err != nil {
		return JobView{}, fail(span, fmt.Errorf("update job: %w", err))
	}
	s.audit("job.updated", "job_id", jobID, "user_id", identity.UserID, "status", updated.Status)
	return newJobView(updated, showContact), nil
}

// Delete removes a posting owned by the caller. Its applications go with it.
func (s *JobService) Delete(ctx context.Context, identity domain.Identity, jobID int64) error {
	ctx, span := s.startSpan(ctx, "JobService.Delete")
	defer span.End()

	if _, err := s.owned(ctx, identity, jobID); err != nil {
		return fail(span, err)
	}
	err := s.jobs.Delete(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(span, newError(KindNotFound, "job not found"))
	}
	if err != nil {
		return fail(span, fmt.Errorf("delete job: %w", err))
	}
	s.audit("job.deleted", "job_id", jobID, "user_id", identity.UserID)
	return nil
}

// ListMine returns every posting of the calling employer regardless of status.
func (s *JobService) ListMine(ctx context.Context, identity domain.Identity) ([]JobView, error) {
	ctx, span := s.startSpan(ctx, "JobService.ListMine")
	defer span.End()

	if !identity.IsEmployer() {
		return nil, fail(span, newError(KindForbidden, "only employers have posted jobs"))
	}
	jobs, err := s.jobs.ListByPoster(ctx, identity.UserID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list posted jobs: %w", err))
	}
	return newJobViews(jobs, showContact), nil
}

func (s *JobService) load(ctx context.Context, jobID int64) (domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Job{}, newError(KindNotFound, "job not found")
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}

func (s *JobService) owned(ctx context.Context, identity domain.Identity, jobID int64) (domain.Job, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	if job.PostedBy != identity.UserID {
		return domain.Job{}, newError(KindForbidden, "not authorized to modify this job")
	}
	return job, nil
}

func applyPatch(job *domain.Job, p JobPatch) error {
	text := []struct {
		name     string
		src      *string
		dst      *string
		required bool
	}{
		{"title", p.Title, &job.Title, true},
		{"company", p.Company, &job.Company, true},
		{"location", p.Location, &job.Location, true},
		{"salary", p.Salary, &job.Salary, true},
		{"description", p.Description, &job.Description, true},
		{"requirements", p.Requirements, &job.Requirements, true},
		{"benefits", p.Benefits, &job.Benefits, false},
		{"category", p.Category, &job.Category, true},
	}
	for _, f := range text {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if f.required && v == "" {
			return Validation("%s cannot be empty", f.name)
		}
		*f.dst = v
	}

	if p.JobType != nil {
		t, ok := domain.ParseJobType(*p.JobType)
		if !ok {
			return Validation("jobType %q is not a valid job type", *p.JobType)
		}
		job.JobType = t
	}
	if p.ExperienceLevel != nil {
		level, ok := domain.ParseExperienceLevel(*p.ExperienceLevel)
		if !ok {
			return Validation("experienceLevel %q is not a valid experience level", *p.ExperienceLevel)
		}
		job.ExperienceLevel = level
	}
	if p.Status != nil {
		status, ok := domain.ParseJobStatus(*p.Status)
		if !ok {
			return Validation("status %q must be active or closed", *p.Status)
		}
		job.Status = status
	}
	if p.Skills != nil {
		job.Skills = cleanSkills(*p.Skills)
	}
	switch {
	case p.ClearDeadline:
		job.Deadline = nil
	case p.Deadline != nil:
		d := *p.Deadline
		job.Deadline = &d
	}
	return nil
}

func trimJobInput(in *JobInput) {
	for _, f := range []*string{
		&in.Title, &in.Company, &in.Location, &in.JobType, &in.Salary, &in.Description,
		&in.Requirements, &in.Benefits, &in.ExperienceLevel, &in.Category,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// cleanSkills trims each entry and drops empty ones, preserving order.
func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
