package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Job status values. Transitions are monotone along queued -> in_progress ->
// {SUCCESS, FAILED}; terminal states are absorbing.
const (
	JobStatusQueued     = "queued"
	JobStatusInProgress = "in_progress"
	JobStatusSuccess    = "SUCCESS"
	JobStatusFailed     = "FAILED"
)

// Backend tags naming which provider handled a job or inbound record.
const (
	BackendPhaxio   = "phaxio"
	BackendSinch    = "sinch"
	BackendSIP      = "sip"
	BackendDisabled = "disabled"
)

// Job is one outbound fax submission and its lifecycle.
type Job struct {
	bun.BaseModel `bun:"table:fax_jobs,alias:j"`

	ID                 string     `bun:"id,pk" json:"id"`
	ToNumber           string     `bun:"to_number,notnull" json:"to_number"`
	Status             string     `bun:"status,notnull" json:"status"`
	Backend            string     `bun:"backend,notnull" json:"backend"`
	ProviderSID        string     `bun:"provider_sid" json:"provider_sid,omitempty"`
	Pages              *int       `bun:"pages" json:"pages,omitempty"`
	Error              string     `bun:"error" json:"error,omitempty"`
	PDFPath            string     `bun:"pdf_path" json:"-"`
	TIFFPath           string     `bun:"tiff_path" json:"-"`
	PDFURL             string     `bun:"pdf_url" json:"pdf_url,omitempty"`
	PDFToken           string     `bun:"pdf_token" json:"-"`
	PDFTokenExpiresAt  *time.Time `bun:"pdf_token_expires_at" json:"-"`
	CreatedAt          time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsTerminal reports whether the job has reached an absorbing state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusSuccess || j.Status == JobStatusFailed
}

// BeforeAppendModel keeps timestamps current on insert/update.
func (j *Job) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		now := time.Now()
		j.CreatedAt = now
		j.UpdatedAt = now
	case *bun.UpdateQuery:
		j.UpdatedAt = time.Now()
	}
	return nil
}
