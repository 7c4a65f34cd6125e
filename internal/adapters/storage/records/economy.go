package records

import (
	"context"

	"pet-adoption-economy/internal/domain/economy"
	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/domain/users"
	"pet-adoption-economy/internal/ports/recordstore"
)

// Economy implementa economy.Store: pets y users se confirman en un único Commit.
type Economy struct {
	store recordstore.Store
	pets  *Pets
	users *Users
}

func NewEconomy(store recordstore.Store) *Economy {
	return &Economy{
		store: store,
		pets:  NewPets(store),
		users: NewUsers(store),
	}
}

var _ economy.Store = (*Economy)(nil)

func (e *Economy) LoadPets(ctx context.Context) (pets.Snapshot, error) {
	return e.pets.LoadAll(ctx)
}

func (e *Economy) LoadUsers(ctx context.Context) (users.Snapshot, error) {
	return e.users.LoadAll(ctx)
}

func (e *Economy) Commit(ctx context.Context, c economy.Changes) error {
	writes := make([]recordstore.Write, 0, 2)
	if c.Pets != nil {
		w, err := petsWrite(*c.Pets)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	if c.Users != nil {
		w, err := usersWrite(*c.Users)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	return e.store.Commit(ctx, writes...)
}
