package pets

import (
	"errors"
	"fmt"
)

// Category define las categorías de mascota del shelter.
// @Enum puppy, kitten, other
type Category string

const (
	CategoryPuppy  Category = "puppy"
	CategoryKitten Category = "kitten"
	CategoryOther  Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPuppy, CategoryKitten, CategoryOther:
		return true
	}
	return false
}

const (
	MinLevel = 0
	MaxLevel = 100

	InitialHunger    = 50
	InitialHappiness = 50
	DefaultGender    = "Unknown"
)

var (
	ErrAlreadyAdopted = errors.New("pet already adopted")
	ErrInvalidRecord  = errors.New("invalid pet record")
)

// Pet representa una mascota del shelter.
// AdoptedBy es una referencia débil al usuario: no implica ownership del registro.
type Pet struct {
	ID int64

	Name        string
	Category    Category
	Breed       string
	Age         int
	Gender      string
	Description string
	Image       string

	Adopted   bool
	AdoptedBy *int64

	Hunger    int
	Happiness int
}

// Feed baja el hambre 20 y sube la felicidad 5. No-op si ya no tiene hambre.
func (p *Pet) Feed() {
	if p.Hunger <= MinLevel {
		return
	}
	p.Hunger = clamp(p.Hunger - 20)
	p.Happiness = clamp(p.Happiness + 5)
}

// Play sube la felicidad 20 y el hambre 10. No-op si la felicidad ya está al máximo.
func (p *Pet) Play() {
	if p.Happiness >= MaxLevel {
		return
	}
	p.Happiness = clamp(p.Happiness + 20)
	p.Hunger = clamp(p.Hunger + 10)
}

// Treat baja el hambre 10 y sube la felicidad 10.
func (p *Pet) Treat() {
	if p.Hunger <= MinLevel && p.Happiness >= MaxLevel {
		return
	}
	p.Hunger = clamp(p.Hunger - 10)
	p.Happiness = clamp(p.Happiness + 10)
}

// Adopt marca la mascota como adoptada por userID.
// El guard "ya adoptada" vive también en el servicio de economía; acá sólo evita pisar al adoptante.
func (p *Pet) Adopt(userID int64) error {
	if p.Adopted {
		return ErrAlreadyAdopted
	}
	id := userID
	p.Adopted = true
	p.AdoptedBy = &id
	return nil
}

func (p *Pet) ReturnToShelter() {
	p.Adopted = false
	p.AdoptedBy = nil
}

// IsAdoptedBy reporta si la mascota está adoptada por userID.
func (p Pet) IsAdoptedBy(userID int64) bool {
	return p.Adopted && p.AdoptedBy != nil && *p.AdoptedBy == userID
}

// Validate rechaza registros que rompen invariantes (se usa al cargar).
func (p Pet) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidRecord)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: pet %d: unknown type %q", ErrInvalidRecord, p.ID, p.Category)
	}
	if p.Adopted != (p.AdoptedBy != nil) {
		return fmt.Errorf("%w: pet %d: adopted and adoptedBy disagree", ErrInvalidRecord, p.ID)
	}
	if p.Hunger < MinLevel || p.Hunger > MaxLevel {
		return fmt.Errorf("%w: pet %d: hunger %d out of range", ErrInvalidRecord, p.ID, p.Hunger)
	}
	if p.Happiness < MinLevel || p.Happiness > MaxLevel {
		return fmt.Errorf("%w: pet %d: happiness %d out of range", ErrInvalidRecord, p.ID, p.Happiness)
	}
	return nil
}

// Clone devuelve una copia sin punteros compartidos.
func (p Pet) Clone() Pet {
	if p.AdoptedBy != nil {
		id := *p.AdoptedBy
		p.AdoptedBy = &id
	}
	return p
}

func clamp(v int) int {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}
