package audit

import (
	"context"
	"time"
)

// Action es el tag de la operación registrada.
type Action string

const (
	ActionAdopt    Action = "adopt"
	ActionFeed     Action = "feed"
	ActionPlay     Action = "play"
	ActionTreat    Action = "treat"
	ActionReturn   Action = "return"
	ActionPurchase Action = "purchase"
	ActionReset    Action = "reset"
)

// Entry es inmutable una vez escrita. PetID 0 = la acción no involucra mascota.
type Entry struct {
	ID        string
	Timestamp time.Time
	UserID    int64
	PetID     int64
	Action    Action
	Details   map[string]any
}

// Log es el historial completo, en orden de escritura.
type Log struct {
	Entries  []Entry
	Revision uint64
}

type Repository interface {
	LoadAll(ctx context.Context) (Log, error)
	SaveAll(ctx context.Context, l Log) error
}

// Recorder es lo que ven los servicios que auditan.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}
