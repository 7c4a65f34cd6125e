package memory

import (
	"context"
	"encoding/json"
	"sync"

	"pet-adoption-economy/internal/ports/recordstore"
)

type collection struct {
	records  []json.RawMessage
	revision uint64
}

// Store guarda las colecciones en memoria. Útil para tests y modo dev.
type Store struct {
	mu     sync.RWMutex
	byKind map[recordstore.Kind]collection
}

func NewStore() *Store {
	return &Store{
		byKind: make(map[recordstore.Kind]collection),
	}
}

var _ recordstore.Store = (*Store)(nil)

func (s *Store) LoadAll(ctx context.Context, kind recordstore.Kind) (recordstore.Collection, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byKind[kind]
	if !ok {
		return recordstore.Collection{Kind: kind}, nil
	}
	return recordstore.Collection{
		Kind:     kind,
		Records:  cloneRecords(c.records),
		Revision: c.revision,
	}, nil
}

func (s *Store) Commit(ctx context.Context, writes ...recordstore.Write) error {
	if len(writes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &recordstore.WriteError{Kind: writes[0].Kind, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Primero validar todas las revisiones; recién después escribir.
	for _, w := range writes {
		if s.byKind[w.Kind].revision != w.ExpectedRevision {
			return recordstore.ErrConflict
		}
	}
	for _, w := range writes {
		cur := s.byKind[w.Kind]
		s.byKind[w.Kind] = collection{
			records:  cloneRecords(w.Records),
			revision: cur.revision + 1,
		}
	}
	return nil
}

// los RawMessage son slices; copiamos para que nadie mute lo guardado.
func cloneRecords(in []json.RawMessage) []json.RawMessage {
	if in == nil {
		return nil
	}
	out := make([]json.RawMessage, len(in))
	for i, r := range in {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}
