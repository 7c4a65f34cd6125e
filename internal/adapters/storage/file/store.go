// Package file implementa el record store sobre un archivo JSON por colección
// (pets.json, users.json, log.json), el formato que usa el shelter desde el inicio.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pet-adoption-economy/internal/ports/recordstore"

	"github.com/cespare/xxhash/v2"
)

var fileNames = map[recordstore.Kind]string{
	recordstore.KindPets:     "pets.json",
	recordstore.KindUsers:    "users.json",
	recordstore.KindAuditLog: "log.json",
}

// Store persiste cada colección como un array JSON completo.
// La revisión es el hash xxhash del contenido; 0 = archivo inexistente.
// El mutex serializa check+write dentro del proceso; entre procesos no hay garantía.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open crea el directorio si falta.
func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("file store: data dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create data dir: %w", err)
	}
	return &Store{dir: filepath.Clean(dir)}, nil
}

var _ recordstore.Store = (*Store)(nil)

func (s *Store) LoadAll(ctx context.Context, kind recordstore.Kind) (recordstore.Collection, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Err: err}
	}
	path, err := s.path(kind)
	if err != nil {
		return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, rev, err := readFile(path)
	if err != nil {
		return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Err: err}
	}
	if raw == nil {
		return recordstore.Collection{Kind: kind}, nil
	}

	records, err := decode(raw)
	if err != nil {
		return recordstore.Collection{}, &recordstore.ReadError{Kind: kind, Revision: rev, Err: err}
	}
	return recordstore.Collection{Kind: kind, Records: records, Revision: rev}, nil
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

	paths := make([]string, len(writes))
	for i, w := range writes {
		path, err := s.path(w.Kind)
		if err != nil {
			return &recordstore.WriteError{Kind: w.Kind, Err: err}
		}
		_, rev, err := readFile(path)
		if err != nil {
			return &recordstore.ReadError{Kind: w.Kind, Err: err}
		}
		if rev != w.ExpectedRevision {
			return recordstore.ErrConflict
		}
		paths[i] = path
	}

	for i, w := range writes {
		b, err := encode(w.Records)
		if err != nil {
			return &recordstore.WriteError{Kind: w.Kind, Err: err}
		}
		if err := writeAtomic(paths[i], b); err != nil {
			return &recordstore.WriteError{Kind: w.Kind, Err: err}
		}
	}
	return nil
}

func (s *Store) path(kind recordstore.Kind) (string, error) {
	name, ok := fileNames[kind]
	if !ok {
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	return filepath.Join(s.dir, name), nil
}

// readFile devuelve (nil, 0, nil) si el archivo no existe.
func readFile(path string) ([]byte, uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return b, revisionOf(b), nil
}

// revisionOf nunca devuelve 0 para un archivo existente.
func revisionOf(b []byte) uint64 {
	h := xxhash.Sum64(b)
	if h == 0 {
		return 1
	}
	return h
}

func decode(raw []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("invalid json array: %w", err)
	}
	return records, nil
}

func encode(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// writeAtomic escribe a un temporal en el mismo directorio y renombra.
func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
