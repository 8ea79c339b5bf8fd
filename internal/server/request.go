package server

import (
	"errors"
	"time"

	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/pipeline"
)

var (
	errInvalidJSON   = errors.New("invalid JSON request body")
	errAuditNotFound = errors.New("audit not found")
)

// AuditRequest is the JSON body of POST /v1/audits.
type AuditRequest struct {
	URLs     []string     `json:"urls"`
	Config   *AuditConfig `json:"config,omitempty"`
	TaskID   string       `json:"taskId,omitempty"`
	ThreadID string       `json:"threadId,omitempty"`
}

// AuditConfig is the optional scan configuration of an audit request.
// Zero values fall back to the defaults.
type AuditConfig struct {
	MaxPages int `json:"maxPages,omitempty"`

	// Timeout is the per-page navigation timeout in milliseconds.
	Timeout int64 `json:"timeout,omitempty"`

	IncludeScreenshots bool     `json:"includeScreenshots,omitempty"`
	ExcludePatterns    []string `json:"excludePatterns,omitempty"`
	ExcludeSelectors   []string `json:"excludeSelectors,omitempty"`
}

// toRequest converts the body to an audit request.
func (a AuditRequest) toRequest() pipeline.Request {
	req := pipeline.Request{
		URLs:     a.URLs,
		TaskID:   a.TaskID,
		ThreadID: a.ThreadID,
	}
	if c := a.Config; c != nil {
		req.Config = model.ScanConfig{
			MaxPages:           c.MaxPages,
			Timeout:            time.Duration(c.Timeout) * time.Millisecond,
			IncludeScreenshots: c.IncludeScreenshots,
			ExcludePatterns:    c.ExcludePatterns,
			ExcludeSelectors:   c.ExcludeSelectors,
		}
	}
	return req
}
