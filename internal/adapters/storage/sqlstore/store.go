// Package sqlstore implementa recordstore.Store sobre database/sql: una fila
// por colección (kind, revision, records) con CAS sobre revision.
// Lo comparten los adapters postgres y sqlite; sólo cambia el dialecto.
// Las queries usan placeholders numerados con el mismo orden de argumentos:
// kind, records, updated_at, expected revision.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"pet-adoption-economy/internal/ports/recordstore"
)

// Dialect agrupa las queries de cada motor.
type Dialect struct {
	Name      string
	SelectOne string
	InsertNew string
	UpdateCAS string
}

var Postgres = Dialect{
	Name:      "postgres",
	SelectOne: `SELECT revision, records FROM record_collections WHERE kind = $1`,
	InsertNew: `
		INSERT INTO record_collections (kind, revision, records, updated_at)
		VALUES ($1, 1, $2::jsonb, $3)
		ON CONFLICT (kind) DO NOTHING
	`,
	UpdateCAS: `
		UPDATE record_collections
		SET revision = revision + 1, records = $2::jsonb, updated_at = $3
		WHERE kind = $1 AND revision = $4
	`,
}

var SQLite = Dialect{
	Name:      "sqlite",
	SelectOne: `SELECT revision, records FROM record_collections WHERE kind = ?1`,
	InsertNew: `
		INSERT INTO record_collections (kind, revision, records, updated_at)
		VALUES (?1, 1, ?2, ?3)
		ON CONFLICT (kind) DO NOTHING
	`,
	UpdateCAS: `
		UPDATE record_collections
		SET revision = revision + 1, records = ?2, updated_at = ?3
		WHERE kind = ?1 AND revision = ?4
	`,
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d, now: time.Now}
}

var _ recordstore.Store = (*Store)(nil)

func (s *Store) LoadAll(ctx context.Context, kind recordstore.Kind) (recordstore.Collection, error) {
	var (
		rev int64
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, s.dialect.SelectOne, string(kind)).Scan(&rev, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return recordstore.Collection{Kind: kind}, nil
		}
		return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Err: err}
	}

	var records []json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Revision: uint64(rev), Err: err}
		}
	}
	return recordstore.Collection{Kind: kind, Records: records, Revision: uint64(rev)}, nil
}

func (s *Store) Commit(ctx context.Context, writes ...recordstore.Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &recordstore.WriteError{Kind: writes[0].Kind, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC()
	for _, w := range writes {
		if err := s.apply(ctx, tx, w, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return &recordstore.WriteError{Kind: writes[0].Kind, Err: err}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, tx *sql.Tx, w recordstore.Write, now time.Time) error {
	records := w.Records
	if records == nil {
		records = []json.RawMessage{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return &recordstore.WriteError{Kind: w.Kind, Err: err}
	}

	var res sql.Result
	if w.ExpectedRevision == 0 {
		res, err = tx.ExecContext(ctx, s.dialect.InsertNew, string(w.Kind), string(b), now)
	} else {
		res, err = tx.ExecContext(ctx, s.dialect.UpdateCAS, string(w.Kind), string(b), now, int64(w.ExpectedRevision))
	}
	if err != nil {
		return &recordstore.WriteError{Kind: w.Kind, Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &recordstore.WriteError{Kind: w.Kind, Err: err}
	}
	if n == 0 {
		return recordstore.ErrConflict
	}
	return nil
}
