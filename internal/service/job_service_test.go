package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/service"
)

func TestCreateJobRequiresEmployer(t *testing.T) {
	h := newHarness(t)
	seeker := h.register(t, "jane@example.com", domain.RoleJobseeker)

	_, err := h.jobs.Create(context.Background(), seeker, service.JobInput{Title: "Anything"})
	require.ErrorIs(t, err, service.ErrForbidden)

	jobs, err := h.jobs.List(context.Background(), service.JobFilterInput{})
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestCreateJobDefaultsAndCanonicalValues(t *testing.T) {
	h := newHarness(t)
	employer := h.register(t, "boss@acme.test", domain.RoleEmployer)

	job := h.postJob(t, employer, "Backend Engineer")
	require.Equal(t, "Acme", job.Company)
	require.Equal(t, "Senior Level", job.ExperienceLevel)
	require.Equal(t, "active", job.Status)
	require.Equal(t, employer.UserID, job.PostedBy.ID)
	require.Equal(t, "boss@acme.test", job.PostedBy.Email)
	require.Equal(t, []string{"Go", "SQL"}, job.Skills)
	require.Zero(t, job.ApplicantCount)
}

func TestCreateJobValidation(t *testing.T) {
	h := newHarness(t)
	employer := h.register(t, "boss@acme.test", domain.RoleEmployer)
	ctx := context.Background()

	base := service.JobInput{
		Title: "T", Location: "L", JobType: "Full-time", Salary: "S", Description: "D",
		Requirements: "R", ExperienceLevel: "Entry Level", Category: "C",
	}

	missing := base
	missing.Title = "  "
	_, err := h.jobs.Create(ctx, employer, missing)
	require.ErrorIs(t, err, service.ErrValidation)
	require.ErrorContains(t, err, "title is required")

	badType := base
	badType.JobType = "Gig"
	_, err = h.jobs.Create(ctx, employer, badType)
	require.ErrorIs(t, err, service.ErrValidation)

	badLevel := base
	badLevel.ExperienceLevel = "Wizard"
	_, err = h.jobs.Create(ctx, employer, badLevel)
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestUpdateJobOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner@acme.test", domain.RoleEmployer)
	other := h.register(t, "other@acme.test", domain.RoleEmployer)
	job := h.postJob(t, owner, "Backend Engineer")

	_, err := h.jobs.Update(ctx, other, job.ID, service.JobPatch{Title: strPtr("Hijacked")})
	require.ErrorIs(t, err, service.ErrForbidden)

	_, err = h.jobs.Update(ctx, owner, 987654321, service.JobPatch{Title: strPtr("Ghost")})
	require.ErrorIs(t, err, service.ErrNotFound)

	skills := []string{" React", "Node.js ", ""}
	deadline := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	updated, err := h.jobs.Update(ctx, owner, job.ID, service.JobPatch{
		Title:    strPtr("Staff Engineer"),
		Status:   strPtr("closed"),
		Skills:   &skills,
		Deadline: &deadline,
	})
	require.NoError(t, err)
	require.Equal(t, "Staff Engineer", updated.Title)
	require.Equal(t, "closed", updated.Status)
	require.Equal(t, []string{"React", "Node.js"}, updated.Skills)
	require.Equal(t, "Remote", updated.Location, "untouched fields survive")
	require.NotNil(t, updated.Deadline)
	require.True(t, deadline.Equal(*updated.Deadline))

	_, err = h.jobs.Update(ctx, owner, job.ID, service.JobPatch{Status: strPtr("archived")})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestDeleteJobOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner@acme.test", domain.RoleEmployer)
	other := h.register(t, "other@acme.test", domain.RoleEmployer)
	job := h.postJob(t, owner, "Backend Engineer")

	require.ErrorIs(t, h.jobs.Delete(ctx, other, job.ID), service.ErrForbidden)
	_, err := h.jobs.Get(ctx, job.ID)
	require.NoError(t, err, "job must survive a forbidden delete")

	require.NoError(t, h.jobs.Delete(ctx, owner, job.ID))
	_, err = h.jobs.Get(ctx, job.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	require.ErrorIs(t, h.jobs.Delete(ctx, owner, job.ID), service.ErrNotFound)
}

func TestListOnlyActiveJobs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner@acme.test", domain.RoleEmployer)
	open := h.postJob(t, owner, "Open Role")
	closed := h.postJob(t, owner, "Closed Role")

	_, err := h.jobs.Update(ctx, owner, closed.ID, service.JobPatch{Status: strPtr("closed")})
	require.NoError(t, err)

	jobs, err := h.jobs.List(ctx, service.JobFilterInput{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, open.ID, jobs[0].ID)
	for _, j := range jobs {
		require.Equal(t, "active", j.Status)
		require.Empty(t, j.PostedBy.Email, "list views hide poster contact")
		require.Equal(t, "Acme", j.PostedBy.Company)
	}

	got, err := h.jobs.Get(ctx, closed.ID)
	require.NoError(t, err, "closed jobs stay readable by id")
	require.Equal(t, "closed", got.Status)

	mine, err := h.jobs.ListMine(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
}

func TestListFiltersAreCaseInsensitiveSubstrings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner@acme.test", domain.RoleEmployer)
	h.postJob(t, owner, "Backend Engineer")
	h.postJob(t, owner, "Product Designer")

	jobs, err := h.jobs.List(ctx, service.JobFilterInput{Search: "ENGINEER"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "Backend Engineer", jobs[0].Title)

	jobs, err = h.jobs.List(ctx, service.JobFilterInput{ExperienceLevel: "Senior"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	jobs, err = h.jobs.List(ctx, service.JobFilterInput{JobType: "Contract"})
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestListMineRequiresEmployer(t *testing.T) {
	h := newHarness(t)
	seeker := h.register(t, "jane@example.com", domain.RoleJobseeker)
	_, err := h.jobs.ListMine(context.Background(), seeker)
	require.ErrorIs(t, err, service.ErrForbidden)
}
