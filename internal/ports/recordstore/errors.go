package recordstore

import (
	"errors"
	"fmt"
)

// ErrConflict indica que la colección cambió desde que se leyó.
var ErrConflict = errors.New("record store: revision conflict")

// ReadError envuelve fallas al leer o decodificar una colección.
// Revision es la revisión del contenido ilegible cuando se pudo calcular
// (permite sobrescribirlo a quien decida tratarlo como vacío).
type ReadError struct {
	Kind     Kind
	Revision uint64
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("record store: read %s: %v", e.Kind, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError envuelve fallas de I/O al persistir una colección.
type WriteError struct {
	Kind Kind
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("record store: write %s: %v", e.Kind, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsStoreError reporta si err viene de la capa de persistencia (lectura o escritura).
func IsStoreError(err error) bool {
	var re *ReadError
	var we *WriteError
	return errors.As(err, &re) || errors.As(err, &we)
}
