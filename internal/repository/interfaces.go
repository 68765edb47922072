package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/jobboard/internal/domain"
)

var (
	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
)

// UserRepository exposes persistence for accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID int64) (domain.User, error)
}

// JobRepository exposes persistence for postings. Reads attach the poster and
// the derived applicant count.
type JobRepository interface {
	Create(ctx context.Context, job domain.Job) (domain.Job, error)
	GetByID(ctx context.Context, jobID int64) (domain.Job, error)
	Update(ctx context.Context, job domain.Job) (domain.Job, error)
	Delete(ctx context.Context, jobID int64) error
	List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	ListByPoster(ctx context.Context, posterID int64) ([]domain.Job, error)
}

// ApplicationRepository exposes persistence for applications. Create must
// return ErrConflict when the (job, applicant) pair already exists.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) (domain.Application, error)
	GetByID(ctx context.Context, applicationID int64) (domain.Application, error)
	FindByJobAndApplicant(ctx context.Context, jobID, applicantID int64) (domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID int64) ([]domain.Application, error)
	ListByJob(ctx context.Context, jobID int64) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) (domain.Application, error)
	Delete(ctx context.Context, applicationID int64) error
}
