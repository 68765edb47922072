package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/jobboard/internal/http/response"
	"github.com/smallbiznis/jobboard/internal/service"
)

// ApplicationHandler serves submission and review of applications.
type ApplicationHandler struct {
	Applications *service.ApplicationService
}

// NewApplicationHandler creates the handler set.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Applications: applications}
}

// Apply handles POST /applications.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	var req service.ApplyInput
	if err := bindJSON(c, &req); err != nil {
		response.Abort(c, err)
		return
	}
	app, err := h.Applications.Apply(c.Request.Context(), caller, req)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted successfully", "application": app})
}

// ListMine handles GET /applications/my.
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	apps, err := h.Applications.ListMine(c.Request.Context(), caller)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ListForJob handles GET /applications/job/:jobId.
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	jobID, err := service.ParseID(c.Param("jobId"), "job")
	if err != nil {
		response.Abort(c, err)
		return
	}
	apps, err := h.Applications.ListForJob(c.Request.Context(), caller, jobID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// UpdateStatus handles PUT /applications/:id/status.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	appID, err := service.ParseID(c.Param("id"), "application")
	if err != nil {
		response.Abort(c, err)
		return
	}
	var req service.StatusInput
	if err := bindJSON(c, &req); err != nil {
		response.Abort(c, err)
		return
	}
	app, err := h.Applications.UpdateStatus(c.Request.Context(), caller, appID, req)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application status updated", "application": app})
}

// Withdraw handles DELETE /applications/:id.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	appID, err := service.ParseID(c.Param("id"), "application")
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.Applications.Withdraw(c.Request.Context(), caller, appID); err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}
