package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"pet-adoption-economy/internal/platform/retry"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLen = 6

type Service struct {
	repo     Repository
	attempts int
	cost     int
	admins   map[string]struct{}
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		attempts: retry.DefaultAttempts,
		cost:     bcrypt.DefaultCost,
		admins:   map[string]struct{}{},
	}
}

// WithAdmins marca como admin a quien se registre con alguno de estos emails.
func (s *Service) WithAdmins(emails []string) *Service {
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			s.admins[e] = struct{}{}
		}
	}
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register crea un usuario con presupuesto de registro (150) y la password hasheada.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || len(in.Password) < minPasswordLen {
		return User{}, ErrInvalidInput
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	return retry.OnConflict(ctx, s.attempts, func() (User, error) {
		snap, err := s.repo.LoadAll(ctx)
		if err != nil {
			return User{}, err
		}
		if snap.IndexByEmail(email) >= 0 {
			return User{}, ErrEmailTaken
		}

		u := NewUser(snap.NextID(), name, email, string(hash))
		u.Budget = RegistrationBudget
		if _, ok := s.admins[NormalizeEmail(email)]; ok {
			u.Role = RoleAdmin
		}
		snap.Users = append(snap.Users, u)

		if err := s.repo.SaveAll(ctx, snap); err != nil {
			return User{}, err
		}
		return u, nil
	})
}

// Authenticate no distingue "email inexistente" de "password incorrecta".
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	snap, err := s.repo.LoadAll(ctx)
	if err != nil {
		return User{}, err
	}
	i := snap.IndexByEmail(email)
	if i < 0 {
		return User{}, ErrInvalidCredentials
	}
	u := snap.Users[i]
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	snap, err := s.repo.LoadAll(ctx)
	if err != nil {
		return User{}, err
	}
	i := snap.Index(id)
	if i < 0 {
		return User{}, ErrNotFound
	}
	return snap.Users[i], nil
}
