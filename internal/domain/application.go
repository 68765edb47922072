package domain

import (
	"strings"
	"time"
)

// ApplicationStatus is the review state set by the job owner. Every status may
// move to every other status.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationAccepted    ApplicationStatus = "accepted"
)

// ParseApplicationStatus normalizes raw input into a defined status.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	switch s := ApplicationStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ApplicationPending, ApplicationReviewed, ApplicationShortlisted, ApplicationRejected, ApplicationAccepted:
		return s, true
	}
	return "", false
}

// Application links an applicant to a job.
type Application struct {
	ID          int64
	JobID       int64
	ApplicantID int64
	CoverLetter string
	ResumeURL   string
	Status      ApplicationStatus
	AppliedAt   time.Time

	// Populated by list queries only.
	Job       *Job
	Applicant *Applicant
}

// Applicant is the projection of the applying user shown to employers.
type Applicant struct {
	ID    int64
	Name  string
	Email string
}
