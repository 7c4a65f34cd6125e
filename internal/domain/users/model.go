package users

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ItemKind son los consumibles que vende el shop.
// @Enum food, toy, treat
type ItemKind string

const (
	ItemFood  ItemKind = "food"
	ItemToy   ItemKind = "toy"
	ItemTreat ItemKind = "treat"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemFood, ItemToy, ItemTreat:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	DefaultBudget      = 100
	RegistrationBudget = 150
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEmptyInventory    = errors.New("no items of that kind in inventory")
	ErrUnknownItem       = errors.New("unknown item")
	ErrInvalidRecord     = errors.New("invalid user record")
)

type Inventory struct {
	Food  int
	Toy   int
	Treat int
}

func (inv *Inventory) slot(kind ItemKind) (*int, error) {
	switch kind {
	case ItemFood:
		return &inv.Food, nil
	case ItemToy:
		return &inv.Toy, nil
	case ItemTreat:
		return &inv.Treat, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownItem, kind)
}

// Count devuelve la cantidad de kind (0 si kind no existe).
func (inv Inventory) Count(kind ItemKind) int {
	n, err := inv.slot(kind)
	if err != nil {
		return 0
	}
	return *n
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role

	Budget      int
	Inventory   Inventory
	AdoptedPets []int64
}

// NewUser arma un usuario con el presupuesto por defecto e inventario vacío.
func NewUser(id int64, name, email, passwordHash string) User {
	return User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Budget:       DefaultBudget,
	}
}

func (u User) CanAfford(cost int) bool {
	return cost >= 0 && u.Budget >= cost
}

func (u *User) SpendMoney(amount int) error {
	if amount < 0 {
		return fmt.Errorf("negative amount %d", amount)
	}
	if !u.CanAfford(amount) {
		return ErrInsufficientFunds
	}
	u.Budget -= amount
	return nil
}

func (u *User) AddToInventory(kind ItemKind) error {
	n, err := u.Inventory.slot(kind)
	if err != nil {
		return err
	}
	*n++
	return nil
}

func (u *User) UseFromInventory(kind ItemKind) error {
	n, err := u.Inventory.slot(kind)
	if err != nil {
		return err
	}
	if *n <= 0 {
		return ErrEmptyInventory
	}
	*n--
	return nil
}

func (u User) HasPet(petID int64) bool {
	return slices.Contains(u.AdoptedPets, petID)
}

// AdoptPet agrega petID y entrega el kit de bienvenida (+5 food, +3 toy, +2 treat).
// Devuelve false sin tocar nada si el usuario ya la tenía.
func (u *User) AdoptPet(petID int64) bool {
	if u.HasPet(petID) {
		return false
	}
	u.AdoptedPets = append(u.AdoptedPets, petID)
	u.Inventory.Food += 5
	u.Inventory.Toy += 3
	u.Inventory.Treat += 2
	return true
}

// ReturnPet quita petID y descuenta 2 food, 1 toy y 1 treat (sin bajar de 0).
// Devuelve false sin tocar nada si el usuario no la tenía.
func (u *User) ReturnPet(petID int64) bool {
	i := slices.Index(u.AdoptedPets, petID)
	if i < 0 {
		return false
	}
	u.AdoptedPets = slices.Delete(u.AdoptedPets, i, i+1)
	u.Inventory.Food = max(0, u.Inventory.Food-2)
	u.Inventory.Toy = max(0, u.Inventory.Toy-1)
	u.Inventory.Treat = max(0, u.Inventory.Treat-1)
	return true
}

// Validate rechaza registros que rompen invariantes (se usa al cargar).
func (u User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidRecord)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: user %d: email required", ErrInvalidRecord, u.ID)
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("%w: user %d: unknown role %q", ErrInvalidRecord, u.ID, u.Role)
	}
	if u.Budget < 0 {
		return fmt.Errorf("%w: user %d: negative budget", ErrInvalidRecord, u.ID)
	}
	if u.Inventory.Food < 0 || u.Inventory.Toy < 0 || u.Inventory.Treat < 0 {
		return fmt.Errorf("%w: user %d: negative inventory", ErrInvalidRecord, u.ID)
	}
	seen := make(map[int64]struct{}, len(u.AdoptedPets))
	for _, id := range u.AdoptedPets {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: user %d: pet %d listed twice", ErrInvalidRecord, u.ID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (u User) Clone() User {
	u.AdoptedPets = slices.Clone(u.AdoptedPets)
	return u
}

// NormalizeEmail es la forma usada para comparar emails (case-insensitive).
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
