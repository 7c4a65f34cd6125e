package recordstore

import (
	"context"
	"encoding/json"
)

// Kind identifica una colección de registros.
type Kind string

const (
	KindPets     Kind = "pets"
	KindUsers    Kind = "users"
	KindAuditLog Kind = "auditLog"
)

// Collection es el contenido completo de una colección junto con la revisión
// con la que se leyó. Revision 0 significa "todavía no existe".
type Collection struct {
	Kind     Kind
	Records  []json.RawMessage
	Revision uint64
}

// Write reemplaza una colección completa si la revisión almacenada sigue
// siendo ExpectedRevision.
type Write struct {
	Kind             Kind
	Records          []json.RawMessage
	ExpectedRevision uint64
}

// Store es el medio durable. No expone updates parciales: quien muta un
// registro carga la colección, la modifica y la guarda entera.
type Store interface {
	// LoadAll devuelve una colección vacía (Revision 0) si el recurso no existe.
	LoadAll(ctx context.Context, kind Kind) (Collection, error)

	// Commit aplica todas las escrituras o ninguna. Si alguna revisión no
	// coincide devuelve ErrConflict sin escribir nada.
	Commit(ctx context.Context, writes ...Write) error
}

// SaveAll es Commit de una sola colección.
func SaveAll(ctx context.Context, s Store, kind Kind, records []json.RawMessage, expected uint64) error {
	return s.Commit(ctx, Write{Kind: kind, Records: records, ExpectedRevision: expected})
}
