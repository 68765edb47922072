package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/http/middleware"
	"github.com/smallbiznis/jobboard/internal/service"
)

// fieldError is returned by custom JSON decoders so the client sees which
// field was malformed.
type fieldError struct {
	message string
}

func (e *fieldError) Error() string { return e.message }

// bindJSON decodes the body into dst and reports failures as validation errors.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			return service.Validation("%s", fe.message)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return service.Validation("%s has the wrong type", typeErr.Field)
		}
		return service.Validation("invalid request body")
	}
	return nil
}

// identity returns the caller attached by the auth middleware.
func identity(c *gin.Context) (domain.Identity, error) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return domain.Identity{}, service.ErrUnauthenticated
	}
	return id, nil
}

// skillsField accepts "React, Node.js" as well as ["React", "Node.js"].
type skillsField struct {
	set    bool
	values []string
}

func (s *skillsField) UnmarshalJSON(data []byte) error {
	s.set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		s.values = []string{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		s.values = domain.SplitSkills(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		s.values = list
		return nil
	}
	return &fieldError{message: "skills must be a comma separated string or a list of strings"}
}

// dateField accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// null and "" clear the value.
type dateField struct {
	set   bool
	clear bool
	value time.Time
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func (d *dateField) UnmarshalJSON(data []byte) error {
	d.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.clear = true
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &fieldError{message: "deadline must be a date string"}
	}
	if raw == "" {
		d.clear = true
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.value = t.UTC()
			return nil
		}
	}
	return &fieldError{message: fmt.Sprintf("deadline %q must be YYYY-MM-DD or RFC 3339", raw)}
}

func (d dateField) ptr() *time.Time {
	if !d.set || d.clear {
		return nil
	}
	t := d.value
	return &t
}
