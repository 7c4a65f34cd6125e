package audit

import (
	"context"
	"errors"
	"slices"
	"time"

	"pet-adoption-economy/internal/platform/logger"
	"pet-adoption-economy/internal/platform/retry"
	"pet-adoption-economy/internal/ports/recordstore"

	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	log      logger.Logger
	attempts int

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		log:      log,
		attempts: retry.DefaultAttempts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

var _ Recorder = (*Service)(nil)

// Record agrega e al final del historial con id y timestamp nuevos.
// Si el log existente no se puede leer se trata como vacío y se sobrescribe.
func (s *Service) Record(ctx context.Context, e Entry) error {
	e.ID = s.newID()
	e.Timestamp = s.now().UTC()
	if e.Details == nil {
		e.Details = map[string]any{}
	}

	_, err := retry.OnConflict(ctx, s.attempts, func() (struct{}, error) {
		l, err := s.load(ctx)
		if err != nil {
			return struct{}{}, err
		}
		l.Entries = append(l.Entries, e)
		return struct{}{}, s.repo.SaveAll(ctx, l)
	})
	return err
}

type Filter struct {
	UserID int64 // 0 = todos
	Limit  int   // <= 0 = sin límite
}

// List devuelve las entradas más nuevas primero.
func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(l.Entries))
	for _, e := range slices.Backward(l.Entries) {
		if f.UserID != 0 && e.UserID != f.UserID {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *Service) load(ctx context.Context) (Log, error) {
	l, err := s.repo.LoadAll(ctx)
	if err == nil {
		return l, nil
	}

	var re *recordstore.ReadError
	if errors.As(err, &re) {
		s.log.Warn("audit log unreadable, treating as empty", map[string]any{
			"err": err,
		})
		return Log{Revision: re.Revision}, nil
	}
	return Log{}, err
}
