// Package audit records security and lifecycle events — authentication
// outcomes, webhook deliveries, job state transitions — to the
// audit_logs table for later inspection.
package audit

import (
	"context"
	"encoding/json"

	"github.com/faxbot/faxbot/internal/database"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/models"
)

// Recorder writes audit events, gated by AUDIT_LOG_ENABLED. Record never
// returns an error: a database hiccup while writing an audit trail must
// never fail the request the trail describes, so failures are logged
// and swallowed instead.
type Recorder struct {
	repo    *database.AuditRepository
	enabled bool
}

func NewRecorder(repo *database.AuditRepository, enabled bool) *Recorder {
	return &Recorder{repo: repo, enabled: enabled}
}

// Record writes one audit row. actorKeyID may be empty for
// unauthenticated events; detail is a free-text note, marshaled into
// the jsonb details column, and may be empty.
func (r *Recorder) Record(ctx context.Context, actorKeyID, action, entity, entityID, detail string) {
	if r == nil || !r.enabled {
		return
	}

	var details string
	if detail != "" {
		b, err := json.Marshal(map[string]string{"note": detail})
		if err != nil {
			logger.LogError(ctx, "audit.record", err, map[string]any{"action": action})
			return
		}
		details = string(b)
	}

	entry := &models.AuditLog{
		ActorKeyID: actorKeyID,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		Details:    details,
	}
	if err := r.repo.Insert(ctx, entry); err != nil {
		logger.LogError(ctx, "audit.record", err, map[string]any{"action": action, "entity": entity})
	}
}
