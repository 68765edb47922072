package domain

import (
	"strings"
	"time"
)

// JobType enumerates employment arrangements.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

var jobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}

// ParseJobType matches raw input case-insensitively against known job types.
func ParseJobType(raw string) (JobType, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, t := range jobTypes {
		if strings.EqualFold(cleaned, string(t)) {
			return t, true
		}
	}
	return "", false
}

// ExperienceLevel enumerates seniority bands.
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "Entry Level"
	ExperienceMid       ExperienceLevel = "Mid Level"
	ExperienceSenior    ExperienceLevel = "Senior Level"
	ExperienceExecutive ExperienceLevel = "Executive"
)

var experienceAliases = map[string]ExperienceLevel{
	"entry":        ExperienceEntry,
	"entry level":  ExperienceEntry,
	"mid":          ExperienceMid,
	"mid level":    ExperienceMid,
	"senior":       ExperienceSenior,
	"senior level": ExperienceSenior,
	"executive":    ExperienceExecutive,
}

// ParseExperienceLevel accepts both the short ("Senior") and long ("Senior Level")
// spellings and returns the canonical stored value.
func ParseExperienceLevel(raw string) (ExperienceLevel, bool) {
	level, ok := experienceAliases[strings.ToLower(strings.Join(strings.Fields(raw), " "))]
	return level, ok
}

// JobStatus tracks whether a posting accepts applications.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// ParseJobStatus normalizes raw input into a job status.
func ParseJobStatus(raw string) (JobStatus, bool) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case JobStatusActive:
		return JobStatusActive, true
	case JobStatusClosed:
		return JobStatusClosed, true
	}
	return "", false
}

// Job is a posting owned by an employer.
type Job struct {
	ID              int64
	Title           string
	Company         string
	Location        string
	JobType         JobType
	Salary          string
	Description     string
	Requirements    string
	Benefits        string
	ExperienceLevel ExperienceLevel
	Category        string
	Skills          []string
	PostedBy        int64
	Status          JobStatus
	CreatedAt       time.Time
	Deadline        *time.Time

	// Populated by read queries only.
	Poster         *Poster
	ApplicantCount int
}

// Poster is the projection of the owning employer attached to job reads.
type Poster struct {
	ID      int64
	Name    string
	Company string
	Email   string
	Phone   string
}

// JobFilter narrows the public job listing. Empty fields are ignored.
type JobFilter struct {
	Search          string
	Location        string
	JobType         string
	Category        string
	ExperienceLevel string
	Status          JobStatus
}

// SplitSkills turns "React, Node.js, SQL" into its trimmed, non-empty parts.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}
