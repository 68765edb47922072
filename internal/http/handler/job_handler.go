package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/jobboard/internal/http/response"
	"github.com/smallbiznis/jobboard/internal/service"
)

// JobHandler serves the job posting routes.
type JobHandler struct {
	Jobs *service.JobService
}

// NewJobHandler creates the handler set.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

// jobRequest is shared by create and update. Absent fields stay nil so an
// update only touches what the client sent.
type jobRequest struct {
	Title           *string     `json:"title"`
	Company         *string     `json:"company"`
	Location        *string     `json:"location"`
	JobType         *string     `json:"jobType"`
	Salary          *string     `json:"salary"`
	Description     *string     `json:"description"`
	Requirements    *string     `json:"requirements"`
	Benefits        *string     `json:"benefits"`
	ExperienceLevel *string     `json:"experienceLevel"`
	Category        *string     `json:"category"`
	Skills          skillsField `json:"skills"`
	Deadline        dateField   `json:"deadline"`
	Status          *string     `json:"status"`
}

func (r jobRequest) input() service.JobInput {
	return service.JobInput{
		Title:           deref(r.Title),
		Company:         deref(r.Company),
		Location:        deref(r.Location),
		JobType:         deref(r.JobType),
		Salary:          deref(r.Salary),
		Description:     deref(r.Description),
		Requirements:    deref(r.Requirements),
		Benefits:        deref(r.Benefits),
		ExperienceLevel: deref(r.ExperienceLevel),
		Category:        deref(r.Category),
		Skills:          r.Skills.values,
		Deadline:        r.Deadline.ptr(),
	}
}

func (r jobRequest) patch() service.JobPatch {
	p := service.JobPatch{
		Title:           r.Title,
		Company:         r.Company,
		Location:        r.Location,
		JobType:         r.JobType,
		Salary:          r.Salary,
		Description:     r.Description,
		Requirements:    r.Requirements,
		Benefits:        r.Benefits,
		ExperienceLevel: r.ExperienceLevel,
		Category:        r.Category,
		Status:          r.Status,
		Deadline:        r.Deadline.ptr(),
		ClearDeadline:   r.Deadline.clear,
	}
	if r.Skills.set {
		skills := r.Skills.values
		p.Skills = &skills
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type jobQuery struct {
	Search          string `form:"search"`
	Location        string `form:"location"`
	JobType         string `form:"jobType"`
	Category        string `form:"category"`
	ExperienceLevel string `form:"experienceLevel"`
}

// List handles GET /jobs.
func (h *JobHandler) List(c *gin.Context) {
	var q jobQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Abort(c, service.Validation("invalid query parameters"))
		return
	}
	jobs, err := h.Jobs.List(c.Request.Context(), service.JobFilterInput{
		Search:          q.Search,
		Location:        q.Location,
		JobType:         q.JobType,
		Category:        q.Category,
		ExperienceLevel: q.ExperienceLevel,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Get handles GET /jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	jobID, err := service.ParseID(c.Param("id"), "job")
	if err != nil {
		response.Abort(c, err)
		return
	}
	job, err := h.Jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// Create handles POST /jobs.
func (h *JobHandler) Create(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	var req jobRequest
	if err := bindJSON(c, &req); err != nil {
		response.Abort(c, err)
		return
	}
	job, err := h.Jobs.Create(c.Request.Context(), caller, req.input())
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Job posted successfully", "job": job})
}

// Update handles PUT /jobs/:id.
func (h *JobHandler) Update(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	jobID, err := service.ParseID(c.Param("id"), "job")
	if err != nil {
		response.Abort(c, err)
		return
	}
	var req jobRequest
	if err := bindJSON(c, &req); err != nil {
		response.Abort(c, err)
		return
	}
	job, err := h.Jobs.Update(c.Request.Context(), caller, jobID, req.patch())
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job updated successfully", "job": job})
}

// Delete handles DELETE /jobs/:id.
func (h *JobHandler) Delete(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	jobID, err := service.ParseID(c.Param("id"), "job")
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.Jobs.Delete(c.Request.Context(), caller, jobID); err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// ListMine handles GET /jobs/my/posted.
func (h *JobHandler) ListMine(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	jobs, err := h.Jobs.ListMine(c.Request.Context(), caller)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
