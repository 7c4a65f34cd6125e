package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pet-adoption-economy/internal/domain/audit"
	"pet-adoption-economy/internal/ports/recordstore"
)

type auditRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    int64          `json:"userId"`
	PetID     int64          `json:"petId,omitempty"`
	Action    audit.Action   `json:"action"`
	Details   map[string]any `json:"details"`
}

func DecodeAudit(c recordstore.Collection) (audit.Log, error) {
	out := make([]audit.Entry, 0, len(c.Records))
	for i, raw := range c.Records {
		var rec auditRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return audit.Log{}, readErr(recordstore.KindAuditLog, c, fmt.Errorf("record %d: %w", i, err))
		}
		if rec.Action == "" {
			return audit.Log{}, readErr(recordstore.KindAuditLog, c, fmt.Errorf("record %d: action required", i))
		}
		out = append(out, audit.Entry{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			UserID:    rec.UserID,
			PetID:     rec.PetID,
			Action:    rec.Action,
			Details:   rec.Details,
		})
	}
	return audit.Log{Entries: out, Revision: c.Revision}, nil
}

func EncodeAudit(l audit.Log) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(l.Entries))
	for _, e := range l.Entries {
		b, err := json.Marshal(auditRecord{
			ID:        e.ID,
			Timestamp: e.Timestamp.UTC(),
			UserID:    e.UserID,
			PetID:     e.PetID,
			Action:    e.Action,
			Details:   e.Details,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Audit implementa audit.Repository sobre un record store.
type Audit struct {
	store recordstore.Store
}

func NewAudit(store recordstore.Store) *Audit {
	return &Audit{store: store}
}

var _ audit.Repository = (*Audit)(nil)

func (r *Audit) LoadAll(ctx context.Context) (audit.Log, error) {
	c, err := r.store.LoadAll(ctx, recordstore.KindAuditLog)
	if err != nil {
		return audit.Log{}, err
	}
	return DecodeAudit(c)
}

func (r *Audit) SaveAll(ctx context.Context, l audit.Log) error {
	recs, err := EncodeAudit(l)
	if err != nil {
		return &recordstore.WriteError{Kind: recordstore.KindAuditLog, Err: err}
	}
	return recordstore.SaveAll(ctx, r.store, recordstore.KindAuditLog, recs, l.Revision)
}
