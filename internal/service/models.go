package service

import (
	"time"

	"github.com/smallbiznis/jobboard/internal/domain"
)

// AuthResult bundles the issued token with the user profile.
type AuthResult struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

// UserView is the public projection of an account. The password hash never
// leaves the service layer.
type UserView struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PosterView is the employer projection attached to jobs.
type PosterView struct {
	ID      int64  `json:"id,string"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// JobView is the JSON shape of a posting.
type JobView struct {
	ID              int64      `json:"id,string"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	JobType         string     `json:"jobType"`
	Salary          string     `json:"salary"`
	Description     string     `json:"description"`
	Requirements    string     `json:"requirements"`
	Benefits        string     `json:"benefits,omitempty"`
	ExperienceLevel string     `json:"experienceLevel"`
	Category        string     `json:"category"`
	Skills          []string   `json:"skills"`
	PostedBy        PosterView `json:"postedBy"`
	Status          string     `json:"status"`
	ApplicantCount  int        `json:"applicantCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// ApplicantView is the applicant projection shown to the job owner.
type ApplicantView struct {
	ID    int64  `json:"id,string"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ApplicationView is the JSON shape of an application.
type ApplicationView struct {
	ID          int64          `json:"id,string"`
	JobID       int64          `json:"jobId,string"`
	ApplicantID int64          `json:"applicantId,string"`
	CoverLetter string         `json:"coverLetter"`
	ResumeURL   string         `json:"resumeUrl,omitempty"`
	Status      string         `json:"status"`
	AppliedAt   time.Time      `json:"appliedAt"`
	Job         *JobView       `json:"job,omitempty"`
	Applicant   *ApplicantView `json:"applicant,omitempty"`
}

func newUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Company:   u.Company,
		CreatedAt: u.CreatedAt,
	}
}

// contactVisibility controls whether the poster's email and phone are exposed.
type contactVisibility bool

const (
	hideContact contactVisibility = false
	showContact contactVisibility = true
)

func newJobView(j domain.Job, contact contactVisibility) JobView {
	view := JobView{
		ID:              j.ID,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		JobType:         string(j.JobType),
		Salary:          j.Salary,
		Description:     j.Description,
		Requirements:    j.Requirements,
		Benefits:        j.Benefits,
		ExperienceLevel: string(j.ExperienceLevel),
		Category:        j.Category,
		Skills:          j.Skills,
		PostedBy:        PosterView{ID: j.PostedBy},
		Status:          string(j.Status),
		ApplicantCount:  j.ApplicantCount,
		CreatedAt:       j.CreatedAt,
		Deadline:        j.Deadline,
	}
	if view.Skills == nil {
		view.Skills = []string{}
	}
	if p := j.Poster; p != nil {
		view.PostedBy.Name = p.Name
		view.PostedBy.Company = p.Company
		if contact == showContact {
			view.PostedBy.Email = p.Email
			view.PostedBy.Phone = p.Phone
		}
	}
	return view
}

func newJobViews(jobs []domain.Job, contact contactVisibility) []JobView {
	views := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, newJobView(j, contact))
	}
	return views
}

func newApplicationView(a domain.Application) ApplicationView {
	view := ApplicationView{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		CoverLetter: a.CoverLetter,
		ResumeURL:   a.ResumeURL,
		Status:      string(a.Status),
		AppliedAt:   a.AppliedAt,
	}
	if a.Job != nil {
		job := newJobView(*a.Job, hideContact)
		view.Job = &job
	}
	if a.Applicant != nil {
		view.Applicant = &ApplicantView{ID: a.Applicant.ID, Name: a.Applicant.Name, Email: a.Applicant.Email}
	}
	return view
}

func newApplicationViews(apps []domain.Application) []ApplicationView {
	views := make([]ApplicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, newApplicationView(a))
	}
	return views
}
