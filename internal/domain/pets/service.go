package pets

import (
	"context"
	"errors"
	"strings"

	"pet-adoption-economy/internal/platform/retry"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
)

type Service struct {
	repo     Repository
	attempts int
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		attempts: retry.DefaultAttempts,
	}
}

type CreateInput struct {
	Name        string
	Category    Category
	Breed       string
	Age         int
	Gender      string
	Description string
	Image       string
}

// Create agrega una mascota nueva (no adoptada, hambre y felicidad en 50).
func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	name := strings.TrimSpace(in.Name)
	breed := strings.TrimSpace(in.Breed)
	if name == "" || breed == "" || !in.Category.Valid() || in.Age < 0 {
		return Pet{}, ErrInvalidInput
	}
	gender := strings.TrimSpace(in.Gender)
	if gender == "" {
		gender = DefaultGender
	}

	return retry.OnConflict(ctx, s.attempts, func() (Pet, error) {
		snap, err := s.repo.LoadAll(ctx)
		if err != nil {
			return Pet{}, err
		}

		p := Pet{
			ID:          snap.NextID(),
			Name:        name,
			Category:    in.Category,
			Breed:       breed,
			Age:         in.Age,
			Gender:      gender,
			Description: strings.TrimSpace(in.Description),
			Image:       strings.TrimSpace(in.Image),
			Hunger:      InitialHunger,
			Happiness:   InitialHappiness,
		}
		snap.Pets = append(snap.Pets, p)

		if err := s.repo.SaveAll(ctx, snap); err != nil {
			return Pet{}, err
		}
		return p, nil
	})
}

func (s *Service) GetByID(ctx context.Context, id int64) (Pet, error) {
	snap, err := s.repo.LoadAll(ctx)
	if err != nil {
		return Pet{}, err
	}
	i := snap.Index(id)
	if i < 0 {
		return Pet{}, ErrNotFound
	}
	return snap.Pets[i], nil
}

// List devuelve todas las mascotas; si category no está vacío filtra por ella.
func (s *Service) List(ctx context.Context, category Category) ([]Pet, error) {
	snap, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return snap.Pets, nil
	}

	out := make([]Pet, 0, len(snap.Pets))
	for _, p := range snap.Pets {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Seed carga el shelter inicial sólo si no hay mascotas. Devuelve cuántas agregó.
func (s *Service) Seed(ctx context.Context, in []CreateInput) (int, error) {
	return retry.OnConflict(ctx, s.attempts, func() (int, error) {
		snap, err := s.repo.LoadAll(ctx)
		if err != nil {
			return 0, err
		}
		if len(snap.Pets) > 0 {
			return 0, nil
		}

		for _, c := range in {
			p := Pet{
				ID:          snap.NextID(),
				Name:        strings.TrimSpace(c.Name),
				Category:    c.Category,
				Breed:       strings.TrimSpace(c.Breed),
				Age:         c.Age,
				Gender:      strings.TrimSpace(c.Gender),
				Description: c.Description,
				Image:       c.Image,
				Hunger:      InitialHunger,
				Happiness:   InitialHappiness,
			}
			if p.Gender == "" {
				p.Gender = DefaultGender
			}
			if err := p.Validate(); err != nil {
				return 0, err
			}
			snap.Pets = append(snap.Pets, p)
		}

		if err := s.repo.SaveAll(ctx, snap); err != nil {
			return 0, err
		}
		return len(in), nil
	})
}

// StarterShelter es el catálogo con el que arranca un store vacío.
func StarterShelter() []CreateInput {
	return []CreateInput{
		{Name: "Buddy", Category: CategoryPuppy, Breed: "Golden Retriever", Age: 2, Gender: "Male", Description: "Friendly and loves to play fetch"},
		{Name: "Bella", Category: CategoryPuppy, Breed: "Labrador", Age: 1, Gender: "Female", Description: "Energetic and good with kids"},
		{Name: "Whiskers", Category: CategoryKitten, Breed: "Tabby", Age: 1, Gender: "Male", Description: "Curious and playful"},
		{Name: "Mittens", Category: CategoryKitten, Breed: "Siamese", Age: 2, Gender: "Female", Description: "Calm and affectionate"},
		{Name: "Coco", Category: CategoryOther, Breed: "Holland Lop Rabbit", Age: 1, Gender: "Female", Description: "Gentle and quiet"},
	}
}
