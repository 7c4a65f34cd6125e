package economy

import (
	"context"
	"errors"
	"fmt"

	"pet-adoption-economy/internal/domain/audit"
	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/domain/users"
	"pet-adoption-economy/internal/platform/logger"
	"pet-adoption-economy/internal/platform/retry"
	"pet-adoption-economy/internal/ports/recordstore"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNotAdoptedByUser = errors.New("pet is not adopted by this user")
	ErrUnknownAction    = errors.New("unknown action")
)

// Changes agrupa las colecciones a persistir en un solo commit.
// nil = esa colección no cambió.
type Changes struct {
	Pets  *pets.Snapshot
	Users *users.Snapshot
}

// Store es la vista transaccional que necesita la economía: carga de ambas
// colecciones y commit atómico con chequeo de revisión.
type Store interface {
	LoadPets(ctx context.Context) (pets.Snapshot, error)
	LoadUsers(ctx context.Context) (users.Snapshot, error)
	Commit(ctx context.Context, c Changes) error
}

// Outcomes reportados al Observer.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Observer interface {
	ObserveOperation(action, outcome string)
	ObserveConflict(action string)
}

// Result es el estado posterior a una operación exitosa.
// Pet es nil en operaciones sin mascota (compra, reset).
type Result struct {
	User    users.User
	Pet     *pets.Pet
	Message string
}

type Service struct {
	store    Store
	recorder audit.Recorder
	log      logger.Logger
	obs      Observer
	attempts int
}

func NewService(store Store, recorder audit.Recorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:    store,
		recorder: recorder,
		log:      log,
		attempts: retry.DefaultAttempts,
	}
}

func (s *Service) WithObserver(o Observer) *Service {
	s.obs = o
	return s
}

// WithAttempts fija cuántas veces se reintenta el ciclo completo ante conflicto.
func (s *Service) WithAttempts(n int) *Service {
	if n > 0 {
		s.attempts = n
	}
	return s
}

// Adopt asigna la mascota al usuario y le entrega el kit de bienvenida.
func (s *Service) Adopt(ctx context.Context, userID, petID int64) (Result, error) {
	return s.execute(ctx, audit.ActionAdopt, func(tx *txn) error {
		p, err := tx.pet(petID)
		if err != nil {
			return err
		}
		u, err := tx.user(userID)
		if err != nil {
			return err
		}
		if err := p.Adopt(userID); err != nil {
			return err
		}
		if !u.AdoptPet(petID) {
			s.log.Warn("pet already listed in user's adoptedPets", map[string]any{
				"user_id": userID,
				"pet_id":  petID,
			})
		}

		tx.touchPets()
		tx.touchUsers()
		tx.entry = &audit.Entry{UserID: userID, PetID: petID, Action: audit.ActionAdopt, Details: map[string]any{
			"petName": p.Name,
		}}
		tx.result = Result{User: *u, Pet: p, Message: fmt.Sprintf("%s has been successfully adopted!", p.Name)}
		return nil
	})
}

func (s *Service) Feed(ctx context.Context, userID, petID int64, useInventory bool) (Result, error) {
	return s.care(ctx, audit.ActionFeed, users.ItemFood, userID, petID, useInventory, (*pets.Pet).Feed,
		"%s has been fed!")
}

func (s *Service) Play(ctx context.Context, userID, petID int64, useInventory bool) (Result, error) {
	return s.care(ctx, audit.ActionPlay, users.ItemToy, userID, petID, useInventory, (*pets.Pet).Play,
		"%s had fun playing!")
}

func (s *Service) Treat(ctx context.Context, userID, petID int64, useInventory bool) (Result, error) {
	return s.care(ctx, audit.ActionTreat, users.ItemTreat, userID, petID, useInventory, (*pets.Pet).Treat,
		"%s enjoyed a treat!")
}

// care es feed/play/treat: consume un ítem del inventario o paga su precio,
// y aplica el efecto sobre la mascota.
func (s *Service) care(ctx context.Context, action audit.Action, item users.ItemKind, userID, petID int64,
	useInventory bool, effect func(*pets.Pet), msg string) (Result, error) {
	return s.execute(ctx, action, func(tx *txn) error {
		u, p, err := tx.owned(userID, petID)
		if err != nil {
			return err
		}

		cost := 0
		if useInventory {
			if err := u.UseFromInventory(item); err != nil {
				return err
			}
		} else {
			if cost, err = Price(item); err != nil {
				return err
			}
			if err := u.SpendMoney(cost); err != nil {
				return err
			}
		}
		effect(p)

		tx.touchPets()
		tx.touchUsers()
		tx.entry = &audit.Entry{UserID: userID, PetID: petID, Action: action, Details: map[string]any{
			"useInventory": useInventory,
			"cost":         cost,
			"hunger":       p.Hunger,
			"happiness":    p.Happiness,
		}}
		tx.result = Result{User: *u, Pet: p, Message: fmt.Sprintf(msg, p.Name)}
		return nil
	})
}

// Return devuelve la mascota al shelter cobrando ReturnFee.
func (s *Service) Return(ctx context.Context, userID, petID int64) (Result, error) {
	return s.execute(ctx, audit.ActionReturn, func(tx *txn) error {
		u, p, err := tx.owned(userID, petID)
		if err != nil {
			return err
		}
		if err := u.SpendMoney(ReturnFee); err != nil {
			return err
		}
		p.ReturnToShelter()
		u.ReturnPet(petID)

		tx.touchPets()
		tx.touchUsers()
		tx.entry = &audit.Entry{UserID: userID, PetID: petID, Action: audit.ActionReturn, Details: map[string]any{
			"fee": ReturnFee,
		}}
		tx.result = Result{User: *u, Pet: p, Message: fmt.Sprintf("%s has been returned to the shelter.", p.Name)}
		return nil
	})
}

func (s *Service) Purchase(ctx context.Context, userID int64, item users.ItemKind) (Result, error) {
	return s.execute(ctx, audit.ActionPurchase, func(tx *txn) error {
		price, err := Price(item)
		if err != nil {
			return err
		}
		u, err := tx.user(userID)
		if err != nil {
			return err
		}
		if err := u.SpendMoney(price); err != nil {
			return err
		}
		if err := u.AddToInventory(item); err != nil {
			return err
		}

		tx.touchUsers()
		tx.entry = &audit.Entry{UserID: userID, Action: audit.ActionPurchase, Details: map[string]any{
			"item":  string(item),
			"price": price,
		}}
		tx.result = Result{User: *u, Message: fmt.Sprintf("Successfully purchased %s!", item)}
		return nil
	})
}

// Apply despacha una acción por nombre (feed, play, treat, return).
func (s *Service) Apply(ctx context.Context, userID, petID int64, action string, useInventory bool) (Result, error) {
	switch audit.Action(action) {
	case audit.ActionFeed:
		return s.Feed(ctx, userID, petID, useInventory)
	case audit.ActionPlay:
		return s.Play(ctx, userID, petID, useInventory)
	case audit.ActionTreat:
		return s.Treat(ctx, userID, petID, useInventory)
	case audit.ActionReturn:
		return s.Return(ctx, userID, petID)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// ResetAdoptions devuelve todas las mascotas al shelter y vacía adoptedPets
// de todos los usuarios. No cobra ni toca inventarios.
func (s *Service) ResetAdoptions(ctx context.Context, actorID int64) (Result, error) {
	return s.execute(ctx, audit.ActionReset, func(tx *txn) error {
		reset := 0
		for i := range tx.pets.Pets {
			if tx.pets.Pets[i].Adopted {
				reset++
			}
			tx.pets.Pets[i].ReturnToShelter()
		}
		for i := range tx.users.Users {
			tx.users.Users[i].AdoptedPets = nil
		}

		tx.touchPets()
		tx.touchUsers()
		tx.entry = &audit.Entry{UserID: actorID, Action: audit.ActionReset, Details: map[string]any{
			"petsReset": reset,
		}}
		if i := tx.users.Index(actorID); i >= 0 {
			tx.result.User = tx.users.Users[i]
		}
		tx.result.Message = "All pets have been reset to unadopted status"
		return nil
	})
}

// execute corre load → mutate → commit, reintentando todo el ciclo ante
// conflicto de revisión. La entrada de auditoría se envía sólo si el commit salió.
func (s *Service) execute(ctx context.Context, action audit.Action, mutate func(tx *txn) error) (Result, error) {
	tx, err := retry.OnConflict(ctx, s.attempts, func() (*txn, error) {
		tx, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		if err := mutate(tx); err != nil {
			return nil, err
		}
		if err := s.store.Commit(ctx, tx.changes()); err != nil {
			if errors.Is(err, recordstore.ErrConflict) {
				s.conflict(action)
			}
			return nil, err
		}
		return tx, nil
	})
	if err != nil {
		s.observe(action, err)
		return Result{}, err
	}
	s.observe(action, nil)

	if tx.entry != nil && s.recorder != nil {
		if err := s.recorder.Record(ctx, *tx.entry); err != nil {
			s.log.Warn("audit record failed", map[string]any{
				"action": action,
				"err":    err,
			})
		}
	}
	return tx.result, nil
}

func (s *Service) load(ctx context.Context) (*txn, error) {
	tx := &txn{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.store.LoadPets(gctx)
		tx.pets = snap
		return err
	})
	g.Go(func() error {
		snap, err := s.store.LoadUsers(gctx)
		tx.users = snap
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) observe(action audit.Action, err error) {
	if s.obs == nil {
		return
	}
	s.obs.ObserveOperation(string(action), outcomeOf(err))
}

func (s *Service) conflict(action audit.Action) {
	s.log.Debug("commit conflict, retrying", map[string]any{"action": action})
	if s.obs != nil {
		s.obs.ObserveConflict(string(action))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case recordstore.IsStoreError(err), errors.Is(err, recordstore.ErrConflict), errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeError
	default:
		return OutcomeRejected
	}
}

// txn es el estado de un intento: copias frescas de ambas colecciones.
type txn struct {
	pets  pets.Snapshot
	users users.Snapshot

	dirtyPets  bool
	dirtyUsers bool

	entry  *audit.Entry
	result Result
}

func (tx *txn) touchPets()  { tx.dirtyPets = true }
func (tx *txn) touchUsers() { tx.dirtyUsers = true }

func (tx *txn) changes() Changes {
	var c Changes
	if tx.dirtyPets {
		c.Pets = &tx.pets
	}
	if tx.dirtyUsers {
		c.Users = &tx.users
	}
	return c
}

func (tx *txn) pet(id int64) (*pets.Pet, error) {
	i := tx.pets.Index(id)
	if i < 0 {
		return nil, pets.ErrNotFound
	}
	return &tx.pets.Pets[i], nil
}

func (tx *txn) user(id int64) (*users.User, error) {
	i := tx.users.Index(id)
	if i < 0 {
		return nil, users.ErrNotFound
	}
	return &tx.users.Users[i], nil
}

// owned exige que la relación de adopción esté registrada en ambos lados.
func (tx *txn) owned(userID, petID int64) (*users.User, *pets.Pet, error) {
	p, err := tx.pet(petID)
	if err != nil {
		return nil, nil, err
	}
	u, err := tx.user(userID)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsAdoptedBy(userID) || !u.HasPet(petID) {
		return nil, nil, ErrNotAdoptedByUser
	}
	return u, p, nil
}
