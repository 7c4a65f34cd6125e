package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"pet-adoption-economy/internal/domain/users"
	"pet-adoption-economy/internal/ports/recordstore"
)

type userRecord struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"passwordHash"`
	Role         users.Role      `json:"role"`
	Budget       int             `json:"budget"`
	AdoptedPets  []petRef        `json:"adoptedPets"`
	Inventory    inventoryRecord `json:"inventory"`
}

type inventoryRecord struct {
	Food  int `json:"food"`
	Toy   int `json:"toy"`
	Treat int `json:"treat"`
}

// petRef se escribe como {"id": n}; al leer también acepta el número pelado.
type petRef struct {
	ID int64 `json:"id"`
}

func (r *petRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		return json.Unmarshal(b, &r.ID)
	}
	type plain petRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = petRef(p)
	return nil
}

func DecodeUsers(c recordstore.Collection) (users.Snapshot, error) {
	out := make([]users.User, 0, len(c.Records))
	seenID := make(map[int64]struct{}, len(c.Records))
	seenEmail := make(map[string]struct{}, len(c.Records))
	for i, raw := range c.Records {
		var rec userRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return users.Snapshot{}, readErr(recordstore.KindUsers, c, fmt.Errorf("record %d: %w", i, err))
		}
		u := rec.toUser()
		if err := u.Validate(); err != nil {
			return users.Snapshot{}, readErr(recordstore.KindUsers, c, err)
		}
		if _, dup := seenID[u.ID]; dup {
			return users.Snapshot{}, readErr(recordstore.KindUsers, c, fmt.Errorf("%w: duplicate user id %d", users.ErrInvalidRecord, u.ID))
		}
		email := users.NormalizeEmail(u.Email)
		if _, dup := seenEmail[email]; dup {
			return users.Snapshot{}, readErr(recordstore.KindUsers, c, fmt.Errorf("%w: duplicate email %q", users.ErrInvalidRecord, u.Email))
		}
		seenID[u.ID] = struct{}{}
		seenEmail[email] = struct{}{}
		out = append(out, u)
	}
	return users.Snapshot{Users: out, Revision: c.Revision}, nil
}

func EncodeUsers(s users.Snapshot) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(s.Users))
	for _, u := range s.Users {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		b, err := json.Marshal(fromUser(u))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r userRecord) toUser() users.User {
	u := users.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Budget:       r.Budget,
		Inventory: users.Inventory{
			Food:  r.Inventory.Food,
			Toy:   r.Inventory.Toy,
			Treat: r.Inventory.Treat,
		},
	}
	if u.Role == "" {
		u.Role = users.RoleUser
	}
	for _, ref := range r.AdoptedPets {
		u.AdoptedPets = append(u.AdoptedPets, ref.ID)
	}
	return u
}

func fromUser(u users.User) userRecord {
	r := userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Budget:       u.Budget,
		AdoptedPets:  make([]petRef, 0, len(u.AdoptedPets)),
		Inventory: inventoryRecord{
			Food:  u.Inventory.Food,
			Toy:   u.Inventory.Toy,
			Treat: u.Inventory.Treat,
		},
	}
	for _, id := range u.AdoptedPets {
		r.AdoptedPets = append(r.AdoptedPets, petRef{ID: id})
	}
	return r
}

// Users implementa users.Repository sobre un record store.
type Users struct {
	store recordstore.Store
}

func NewUsers(store recordstore.Store) *Users {
	return &Users{store: store}
}

var _ users.Repository = (*Users)(nil)

func (r *Users) LoadAll(ctx context.Context) (users.Snapshot, error) {
	c, err := r.store.LoadAll(ctx, recordstore.KindUsers)
	if err != nil {
		return users.Snapshot{}, err
	}
	return DecodeUsers(c)
}

func (r *Users) SaveAll(ctx context.Context, s users.Snapshot) error {
	w, err := usersWrite(s)
	if err != nil {
		return err
	}
	return r.store.Commit(ctx, w)
}

func usersWrite(s users.Snapshot) (recordstore.Write, error) {
	recs, err := EncodeUsers(s)
	if err != nil {
		return recordstore.Write{}, &recordstore.WriteError{Kind: recordstore.KindUsers, Err: err}
	}
	return recordstore.Write{Kind: recordstore.KindUsers, Records: recs, ExpectedRevision: s.Revision}, nil
}
