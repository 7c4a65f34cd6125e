// Package records traduce entre las colecciones crudas del record store y
// las entidades tipadas del dominio. Todo registro se valida al cargar.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/ports/recordstore"
)

type petRecord struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Type        pets.Category `json:"type"`
	Breed       string        `json:"breed"`
	Age         int           `json:"age"`
	Gender      string        `json:"gender"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	Adopted     bool          `json:"adopted"`
	AdoptedBy   *userRef      `json:"adoptedBy"`
	Hunger      int           `json:"hunger"`
	Happiness   int           `json:"happiness"`
}

// userRef acepta el id de usuario como número o como string decimal
// (registros viejos). Siempre se escribe como número.
type userRef int64

func (r *userRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("adoptedBy %q is not a user id", s)
		}
		*r = userRef(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = userRef(n)
	return nil
}

func DecodePets(c recordstore.Collection) (pets.Snapshot, error) {
	out := make([]pets.Pet, 0, len(c.Records))
	seen := make(map[int64]struct{}, len(c.Records))
	for i, raw := range c.Records {
		var rec petRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return pets.Snapshot{}, readErr(recordstore.KindPets, c, fmt.Errorf("record %d: %w", i, err))
		}
		p := rec.toPet()
		if err := p.Validate(); err != nil {
			return pets.Snapshot{}, readErr(recordstore.KindPets, c, err)
		}
		if _, dup := seen[p.ID]; dup {
			return pets.Snapshot{}, readErr(recordstore.KindPets, c, fmt.Errorf("%w: duplicate pet id %d", pets.ErrInvalidRecord, p.ID))
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return pets.Snapshot{Pets: out, Revision: c.Revision}, nil
}

func EncodePets(s pets.Snapshot) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(s.Pets))
	for _, p := range s.Pets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		b, err := json.Marshal(fromPet(p))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r petRecord) toPet() pets.Pet {
	p := pets.Pet{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Type,
		Breed:       r.Breed,
		Age:         r.Age,
		Gender:      r.Gender,
		Description: r.Description,
		Image:       r.Image,
		Adopted:     r.Adopted,
		Hunger:      r.Hunger,
		Happiness:   r.Happiness,
	}
	if p.Gender == "" {
		p.Gender = pets.DefaultGender
	}
	if r.AdoptedBy != nil {
		id := int64(*r.AdoptedBy)
		p.AdoptedBy = &id
	}
	return p
}

func fromPet(p pets.Pet) petRecord {
	r := petRecord{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Category,
		Breed:       p.Breed,
		Age:         p.Age,
		Gender:      p.Gender,
		Description: p.Description,
		Image:       p.Image,
		Adopted:     p.Adopted,
		Hunger:      p.Hunger,
		Happiness:   p.Happiness,
	}
	if p.AdoptedBy != nil {
		ref := userRef(*p.AdoptedBy)
		r.AdoptedBy = &ref
	}
	return r
}

// Pets implementa pets.Repository sobre un record store.
type Pets struct {
	store recordstore.Store
}

func NewPets(store recordstore.Store) *Pets {
	return &Pets{store: store}
}

var _ pets.Repository = (*Pets)(nil)

func (r *Pets) LoadAll(ctx context.Context) (pets.Snapshot, error) {
	c, err := r.store.LoadAll(ctx, recordstore.KindPets)
	if err != nil {
		return pets.Snapshot{}, err
	}
	return DecodePets(c)
}

func (r *Pets) SaveAll(ctx context.Context, s pets.Snapshot) error {
	w, err := petsWrite(s)
	if err != nil {
		return err
	}
	return r.store.Commit(ctx, w)
}

func petsWrite(s pets.Snapshot) (recordstore.Write, error) {
	recs, err := EncodePets(s)
	if err != nil {
		return recordstore.Write{}, &recordstore.WriteError{Kind: recordstore.KindPets, Err: err}
	}
	return recordstore.Write{Kind: recordstore.KindPets, Records: recs, ExpectedRevision: s.Revision}, nil
}

func readErr(kind recordstore.Kind, c recordstore.Collection, err error) error {
	return &recordstore.ReadError{Kind: kind, Revision: c.Revision, Err: err}
}
