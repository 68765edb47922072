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

// ApplyInput is the payload for submitting an application.
type ApplyInput struct {
	JobID       string `json:"jobId" validate:"required"`
	CoverLetter string `json:"coverLetter"`
	ResumeURL   string `json:"resumeUrl" validate:"omitempty,url"`
}

// StatusInput is the payload for a review decision.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed shortlisted rejected accepted"`
}

// ApplicationService manages applications and their review state.
type ApplicationService struct {
	instrumentation
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	snowflake    *snowflake.Node
}

// NewApplicationService wires dependencies.
func NewApplicationService(applications repository.ApplicationRepository, jobs repository.JobRepository, node *snowflake.Node, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		instrumentation: newInstrumentation(logger),
		applications:    applications,
		jobs:            jobs,
		snowflake:       node,
	}
}

// Apply submits the caller's application to a job. A second application for
// the same job is rejected, including when two submissions race.
func (s *ApplicationService) Apply(ctx context.Context, identity domain.Identity, in ApplyInput) (ApplicationView, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.Apply")
	defer span.End()

	in.JobID = strings.TrimSpace(in.JobID)
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	in.ResumeURL = strings.TrimSpace(in.ResumeURL)
	if err := validateInput(in); err != nil {
		return ApplicationView{}, fail(span, err)
	}
	jobID, err := ParseID(in.JobID, "job")
	if err != nil {
		return ApplicationView{}, fail(span, err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return ApplicationView{}, fail(span, newError(KindNotFound, "job not found"))
	}
	if err != nil {
		return ApplicationView{}, fail(span, fmt.Errorf("load job: %w", err))
	}
	if job.Status != domain.JobStatusActive {
		return ApplicationView{}, fail(span, Validation("job is no longer accepting applications"))
	}

	if _, err := s.applications.FindByJobAndApplicant(ctx, jobID, identity.UserID); err == nil {
		return ApplicationView{}, fail(span, newError(KindDuplicateApplication, "already applied to this job"))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return ApplicationView{}, fail(span, fmt.Errorf("check existing application: %w", err))
	}

	app := domain.Application{
		ID:          s.snowflake.Generate().Int64(),
		JobID:       jobID,
		ApplicantID: identity.UserID,
		CoverLetter: in.CoverLetter,
		ResumeURL:   in.ResumeURL,
		Status:      domain.ApplicationPending,
		AppliedAt:   time.Now().UTC(),
	}
	created, err := s.applications.Create(ctx, app)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ApplicationView{}, fail(span, newError(KindDuplicateApplication, "already applied to this job"))
	case errors.Is(err, repository.ErrNotFound):
		return ApplicationView{}, fail(span, newError(KindNotFound, "job not found"))
	case err != nil:
		return ApplicationView{}, fail(span, fmt.Errorf("create application: %w", err))
	}

	s.audit("application.submitted", "application_id", created.ID, "job_id", jobID, "user_id", identity.UserID)
	return newApplicationView(created), nil
}

// ListMine returns the caller's applications with their jobs, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, identity domain.Identity) ([]ApplicationView, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.ListMine")
	defer span.End()

	apps, err := s.applications.ListByApplicant(ctx, identity.UserID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list applications: %w", err))
	}
	return newApplicationViews(apps), nil
}

// ListForJob returns the applications to a job owned by the caller, each with
// the applicant's name and email.
func (s *ApplicationService) ListForJob(ctx context.Context, identity domain.Identity, jobID int64) ([]ApplicationView, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.ListForJob")
	defer span.End()

	if err := s.requireJobOwner(ctx, identity, jobID, "view applications for this job"); err != nil {
		return nil, fail(span, err)
	}
	apps, err := s.applications.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list job applications: %w", err))
	}
	return newApplicationViews(apps), nil
}

// UpdateStatus overwrites the review status. Any status may follow any other.
func (s *ApplicationService) UpdateStatus(ctx context.Context, identity domain.Identity, applicationID int64, in StatusInput) (ApplicationView, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.UpdateStatus")
	defer span.End()

	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if err := validateInput(in); err != nil {
		return ApplicationView{}, fail(span, err)
	}
	status, _ := domain.ParseApplicationStatus(in.Status)

	app, err := s.load(ctx, applicationID)
	if err != nil {
		return ApplicationView{}, fail(span, err)
	}
	if err := s.requireJobOwner(ctx, identity, app.JobID, "update this application"); err != nil {
		return ApplicationView{}, fail(span, err)
	}

	updated, err := s.applications.UpdateStatus(ctx, applicationID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ApplicationView{}, fail(span, newError(KindNotFound, "application not found"))
	}
	if err != nil {
		return ApplicationView{}, fail(span, fmt.Errorf("update application status: %w", err))
	}
	s.audit("application.status_changed", "application_id", applicationID, "user_id", identity.UserID,
		"from", app.Status, "to", updated.Status)
	return newApplicationView(updated), nil
}

// Withdraw deletes an application on behalf of its applicant.
func (s *ApplicationService) Withdraw(ctx context.Context, identity domain.Identity, applicationID int64) error {
	ctx, span := s.startSpan(ctx, "ApplicationService.Withdraw")
	defer span.End()

	app, err := s.load(ctx, applicationID)
	if err != nil {
		return fail(span, err)
	}
	if app.ApplicantID != identity.UserID {
		return fail(span, newError(KindForbidden, "not authorized to withdraw this application"))
	}
	err = s.applications.Delete(ctx, applicationID)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(span, newError(KindNotFound, "application not found"))
	}
	if err != nil {
		return fail(span, fmt.Errorf("delete application: %w", err))
	}
	s.audit("application.withdrawn", "application_id", applicationID, "user_id", identity.UserID)
	return nil
}

func (s *ApplicationService) load(ctx context.Context, applicationID int64) (domain.Application, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Application{}, newError(KindNotFound, "application not found")
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("load application: %w", err)
	}
	return app, nil
}

func (s *ApplicationService) requireJobOwner(ctx context.Context, identity domain.Identity, jobID int64, action string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(KindNotFound, "job not found")
	}
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job.PostedBy != identity.UserID {
		return newError(KindForbidden, "not authorized to %s", action)
	}
	return nil
}
