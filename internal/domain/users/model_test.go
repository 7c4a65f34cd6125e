package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser(1, "Ana", "ana@example.com", "hash")
	assert.Equal(t, DefaultBudget, u.Budget)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, Inventory{}, u.Inventory)
	require.NoError(t, u.Validate())
}

func TestSpendMoney_NeverGoesNegative(t *testing.T) {
	u := NewUser(1, "Ana", "ana@example.com", "")
	u.Budget = 3

	err := u.SpendMoney(5)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 3, u.Budget)

	require.NoError(t, u.SpendMoney(3))
	assert.Equal(t, 0, u.Budget)
	assert.Error(t, u.SpendMoney(-1))
}

func TestInventory(t *testing.T) {
	u := NewUser(1, "Ana", "ana@example.com", "")

	assert.ErrorIs(t, u.UseFromInventory(ItemToy), ErrEmptyInventory)
	require.NoError(t, u.AddToInventory(ItemToy))
	assert.Equal(t, 1, u.Inventory.Count(ItemToy))
	require.NoError(t, u.UseFromInventory(ItemToy))
	assert.Equal(t, 0, u.Inventory.Toy)

	assert.ErrorIs(t, u.AddToInventory("bone"), ErrUnknownItem)
	assert.ErrorIs(t, u.UseFromInventory("bone"), ErrUnknownItem)
	assert.Equal(t, 0, u.Inventory.Count("bone"))
}

func TestAdoptPet_GrantsKitOnce(t *testing.T) {
	u := NewUser(1, "Ana", "ana@example.com", "")

	assert.True(t, u.AdoptPet(10))
	assert.Equal(t, Inventory{Food: 5, Toy: 3, Treat: 2}, u.Inventory)

	assert.False(t, u.AdoptPet(10))
	assert.Equal(t, Inventory{Food: 5, Toy: 3, Treat: 2}, u.Inventory)
	assert.Equal(t, []int64{10}, u.AdoptedPets)
}

func TestReturnPet_DeductsFlooredAtZero(t *testing.T) {
	u := NewUser(1, "Ana", "ana@example.com", "")
	u.AdoptedPets = []int64{10, 11}
	u.Inventory = Inventory{Food: 1, Toy: 4, Treat: 0}

	assert.True(t, u.ReturnPet(10))
	assert.Equal(t, Inventory{Food: 0, Toy: 3, Treat: 0}, u.Inventory)
	assert.Equal(t, []int64{11}, u.AdoptedPets)

	assert.False(t, u.ReturnPet(10))
	assert.Equal(t, Inventory{Food: 0, Toy: 3, Treat: 0}, u.Inventory)
}

func TestValidate_RejectsBrokenRecords(t *testing.T) {
	base := NewUser(1, "Ana", "ana@example.com", "")

	dup := base.Clone()
	dup.AdoptedPets = []int64{3, 3}
	assert.ErrorIs(t, dup.Validate(), ErrInvalidRecord)

	neg := base.Clone()
	neg.Budget = -1
	assert.ErrorIs(t, neg.Validate(), ErrInvalidRecord)

	role := base.Clone()
	role.Role = "root"
	assert.ErrorIs(t, role.Validate(), ErrInvalidRecord)

	noEmail := base.Clone()
	noEmail.Email = " "
	assert.ErrorIs(t, noEmail.Validate(), ErrInvalidRecord)
}
