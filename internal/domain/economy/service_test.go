package economy_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"pet-adoption-economy/internal/adapters/storage/memory"
	"pet-adoption-economy/internal/adapters/storage/records"
	"pet-adoption-economy/internal/domain/audit"
	"pet-adoption-economy/internal/domain/economy"
	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/domain/users"
	"pet-adoption-economy/internal/ports/recordstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fixtures
// -------------------------

type captureRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (c *captureRecorder) Record(ctx context.Context, e audit.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureRecorder) all() []audit.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]audit.Entry(nil), c.entries...)
}

type fixture struct {
	store *memory.Store
	eco   *records.Economy
	rec   *captureRecorder
	svc   *economy.Service
}

func newFixture(t *testing.T, ps []pets.Pet, us []users.User) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, records.NewPets(store).SaveAll(ctx, pets.Snapshot{Pets: ps}))
	require.NoError(t, records.NewUsers(store).SaveAll(ctx, users.Snapshot{Users: us}))

	eco := records.NewEconomy(store)
	rec := &captureRecorder{}
	return &fixture{store: store, eco: eco, rec: rec, svc: economy.NewService(eco, rec, nil)}
}

func (f *fixture) pet(t *testing.T, id int64) pets.Pet {
	t.Helper()
	snap, err := f.eco.LoadPets(context.Background())
	require.NoError(t, err)
	i := snap.Index(id)
	require.GreaterOrEqual(t, i, 0)
	return snap.Pets[i]
}

func (f *fixture) user(t *testing.T, id int64) users.User {
	t.Helper()
	snap, err := f.eco.LoadUsers(context.Background())
	require.NoError(t, err)
	i := snap.Index(id)
	require.GreaterOrEqual(t, i, 0)
	return snap.Users[i]
}

func shelterPet(id int64, name string) pets.Pet {
	return pets.Pet{ID: id, Name: name, Category: pets.CategoryPuppy, Breed: "Mixed", Gender: pets.DefaultGender,
		Hunger: pets.InitialHunger, Happiness: pets.InitialHappiness}
}

func member(id int64, budget int) users.User {
	u := users.NewUser(id, "User", fmt.Sprintf("user%d@example.com", id), "hash")
	u.Budget = budget
	return u
}

// adoptedPair deja a la mascota 1 adoptada por el usuario 1 sin pasar por Adopt
// (inventario vacío, como en los escenarios de referencia).
func adoptedPair(budget int) ([]pets.Pet, []users.User) {
	p := shelterPet(1, "Milo")
	_ = p.Adopt(1)
	u := member(1, budget)
	u.AdoptedPets = []int64{1}
	return []pets.Pet{p}, []users.User{u}
}

// -------------------------
// Escenarios
// -------------------------

func TestFeed_ByMoney(t *testing.T) {
	ps, us := adoptedPair(100)
	f := newFixture(t, ps, us)

	res, err := f.svc.Feed(context.Background(), 1, 1, false)
	require.NoError(t, err)

	assert.Equal(t, 95, res.User.Budget)
	require.NotNil(t, res.Pet)
	assert.Equal(t, 30, res.Pet.Hunger)
	assert.Equal(t, 55, res.Pet.Happiness)
	assert.Equal(t, 95, f.user(t, 1).Budget)
	assert.Equal(t, 30, f.pet(t, 1).Hunger)

	entries := f.rec.all()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionFeed, entries[0].Action)
	assert.Equal(t, int64(1), entries[0].PetID)
}

func TestFeed_FromInventory(t *testing.T) {
	ps, us := adoptedPair(100)
	us[0].Inventory.Food = 1
	f := newFixture(t, ps, us)

	res, err := f.svc.Feed(context.Background(), 1, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 100, res.User.Budget)
	assert.Equal(t, 0, res.User.Inventory.Food)

	_, err = f.svc.Feed(context.Background(), 1, 1, true)
	assert.ErrorIs(t, err, users.ErrEmptyInventory)
	assert.Equal(t, 30, f.pet(t, 1).Hunger)
}

func TestFeed_NotAdoptedByUser(t *testing.T) {
	other := shelterPet(2, "Luna")
	_ = other.Adopt(2)
	f := newFixture(t,
		[]pets.Pet{shelterPet(1, "Milo"), other},
		[]users.User{member(1, 100), member(2, 100)},
	)

	_, err := f.svc.Feed(context.Background(), 1, 1, false)
	assert.ErrorIs(t, err, economy.ErrNotAdoptedByUser)

	_, err = f.svc.Feed(context.Background(), 1, 2, false)
	assert.ErrorIs(t, err, economy.ErrNotAdoptedByUser)

	assert.Equal(t, 100, f.user(t, 1).Budget)
	assert.Equal(t, pets.InitialHunger, f.pet(t, 1).Hunger)
	assert.Empty(t, f.rec.all())
}

func TestCare_RequiresBothSidesOfAdoption(t *testing.T) {
	// la mascota dice adoptedBy=1 pero el usuario no la lista
	p := shelterPet(1, "Milo")
	_ = p.Adopt(1)
	f := newFixture(t, []pets.Pet{p}, []users.User{member(1, 100)})

	_, err := f.svc.Play(context.Background(), 1, 1, false)
	assert.ErrorIs(t, err, economy.ErrNotAdoptedByUser)
}

func TestPlayAndTreat(t *testing.T) {
	ps, us := adoptedPair(100)
	f := newFixture(t, ps, us)

	res, err := f.svc.Play(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 90, res.User.Budget)
	assert.Equal(t, 70, res.Pet.Happiness)
	assert.Equal(t, 60, res.Pet.Hunger)

	res, err = f.svc.Treat(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 87, res.User.Budget)
	assert.Equal(t, 80, res.Pet.Happiness)
	assert.Equal(t, 50, res.Pet.Hunger)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	f := newFixture(t, nil, []users.User{member(1, 3)})

	_, err := f.svc.Purchase(context.Background(), 1, users.ItemFood)
	assert.ErrorIs(t, err, users.ErrInsufficientFunds)

	u := f.user(t, 1)
	assert.Equal(t, 3, u.Budget)
	assert.Equal(t, users.Inventory{}, u.Inventory)
	assert.Empty(t, f.rec.all())
}

func TestPurchase(t *testing.T) {
	f := newFixture(t, nil, []users.User{member(1, 20)})

	res, err := f.svc.Purchase(context.Background(), 1, users.ItemTreat)
	require.NoError(t, err)
	assert.Equal(t, 17, res.User.Budget)
	assert.Equal(t, 1, res.User.Inventory.Treat)
	assert.Nil(t, res.Pet)

	_, err = f.svc.Purchase(context.Background(), 1, "bone")
	assert.ErrorIs(t, err, users.ErrUnknownItem)

	entries := f.rec.all()
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].PetID)
	assert.Equal(t, "treat", entries[0].Details["item"])
}

func TestAdopt_AlreadyAdoptedLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, []pets.Pet{shelterPet(1, "Milo")}, []users.User{member(1, 100), member(2, 100)})

	_, err := f.svc.Adopt(context.Background(), 1, 1)
	require.NoError(t, err)
	before := f.pet(t, 1)

	_, err = f.svc.Adopt(context.Background(), 2, 1)
	assert.ErrorIs(t, err, pets.ErrAlreadyAdopted)
	assert.Equal(t, before, f.pet(t, 1))
	assert.Empty(t, f.user(t, 2).AdoptedPets)
	assert.Equal(t, users.Inventory{}, f.user(t, 2).Inventory)
}

func TestAdopt_NotFound(t *testing.T) {
	f := newFixture(t, []pets.Pet{shelterPet(1, "Milo")}, []users.User{member(1, 100)})

	_, err := f.svc.Adopt(context.Background(), 1, 99)
	assert.ErrorIs(t, err, pets.ErrNotFound)

	_, err = f.svc.Adopt(context.Background(), 99, 1)
	assert.ErrorIs(t, err, users.ErrNotFound)
	assert.False(t, f.pet(t, 1).Adopted)
}

func TestAdoptReturn_RoundTripIsRepeatable(t *testing.T) {
	f := newFixture(t, []pets.Pet{shelterPet(1, "Milo")}, []users.User{member(1, 100)})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := f.svc.Adopt(ctx, 1, 1)
		require.NoError(t, err)
		assert.True(t, res.Pet.IsAdoptedBy(1))
		assert.Equal(t, []int64{1}, res.User.AdoptedPets)

		res, err = f.svc.Return(ctx, 1, 1)
		require.NoError(t, err)
		assert.False(t, res.Pet.Adopted)
		assert.Nil(t, res.Pet.AdoptedBy)
		assert.Empty(t, res.User.AdoptedPets)
	}

	p := f.pet(t, 1)
	assert.Equal(t, "Milo", p.Name)
	assert.Equal(t, pets.InitialHunger, p.Hunger)
	assert.Equal(t, pets.InitialHappiness, p.Happiness)

	u := f.user(t, 1)
	assert.Equal(t, 100-3*economy.ReturnFee, u.Budget)
	// +5/+3/+2 al adoptar, -2/-1/-1 al devolver, tres veces
	assert.Equal(t, users.Inventory{Food: 9, Toy: 6, Treat: 3}, u.Inventory)
	assert.Len(t, f.rec.all(), 6)
}

func TestReturn_InsufficientFunds(t *testing.T) {
	ps, us := adoptedPair(economy.ReturnFee - 1)
	f := newFixture(t, ps, us)

	_, err := f.svc.Return(context.Background(), 1, 1)
	assert.ErrorIs(t, err, users.ErrInsufficientFunds)
	assert.True(t, f.pet(t, 1).IsAdoptedBy(1))
	assert.Equal(t, economy.ReturnFee-1, f.user(t, 1).Budget)
}

func TestBudgetNeverNegative(t *testing.T) {
	ps, us := adoptedPair(12)
	f := newFixture(t, ps, us)
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := f.svc.Play(ctx, 1, 1, false); return err },
		func() error { _, err := f.svc.Feed(ctx, 1, 1, false); return err },
		func() error { _, err := f.svc.Play(ctx, 1, 1, false); return err },
		func() error { _, err := f.svc.Treat(ctx, 1, 1, false); return err },
		func() error { _, err := f.svc.Return(ctx, 1, 1); return err },
		func() error { _, err := f.svc.Purchase(ctx, 1, users.ItemFood); return err },
	}
	for _, op := range ops {
		budget := f.user(t, 1).Budget
		if err := op(); err != nil {
			assert.ErrorIs(t, err, users.ErrInsufficientFunds)
			assert.Equal(t, budget, f.user(t, 1).Budget)
		}
		assert.GreaterOrEqual(t, f.user(t, 1).Budget, 0)
	}
}

func TestApply_Dispatch(t *testing.T) {
	ps, us := adoptedPair(100)
	f := newFixture(t, ps, us)

	res, err := f.svc.Apply(context.Background(), 1, 1, "play", false)
	require.NoError(t, err)
	assert.Equal(t, 90, res.User.Budget)

	_, err = f.svc.Apply(context.Background(), 1, 1, "dance", false)
	assert.ErrorIs(t, err, economy.ErrUnknownAction)
	assert.Len(t, f.rec.all(), 1)
}

func TestResetAdoptions_ClearsBothSides(t *testing.T) {
	ps, us := adoptedPair(100)
	ps = append(ps, shelterPet(2, "Luna"))
	admin := member(9, 100)
	admin.Role = users.RoleAdmin
	us = append(us, admin)
	f := newFixture(t, ps, us)

	res, err := f.svc.ResetAdoptions(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.User.ID)

	assert.False(t, f.pet(t, 1).Adopted)
	assert.Empty(t, f.user(t, 1).AdoptedPets)

	entries := f.rec.all()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionReset, entries[0].Action)
	assert.Equal(t, 1, entries[0].Details["petsReset"])
}

// -------------------------
// Concurrencia
// -------------------------

type flakyStore struct {
	economy.Store
	conflicts int
	commits   int
}

func (s *flakyStore) Commit(ctx context.Context, c economy.Changes) error {
	s.commits++
	if s.conflicts > 0 {
		s.conflicts--
		return recordstore.ErrConflict
	}
	return s.Store.Commit(ctx, c)
}

type countingObserver struct {
	mu        sync.Mutex
	ops       map[string]int
	conflicts int
}

func (o *countingObserver) ObserveOperation(action, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ops == nil {
		o.ops = map[string]int{}
	}
	o.ops[action+"/"+outcome]++
}

func (o *countingObserver) ObserveConflict(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conflicts++
}

func TestExecute_RetriesOnConflict(t *testing.T) {
	ps, us := adoptedPair(100)
	f := newFixture(t, ps, us)
	flaky := &flakyStore{Store: f.eco, conflicts: 2}
	obs := &countingObserver{}
	svc := economy.NewService(flaky, f.rec, nil).WithObserver(obs)

	_, err := svc.Feed(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.commits)
	assert.Equal(t, 2, obs.conflicts)
	assert.Equal(t, 1, obs.ops["feed/ok"])
	assert.Equal(t, 95, f.user(t, 1).Budget)
	assert.Len(t, f.rec.all(), 1)
}

func TestExecute_GivesUpAfterAttempts(t *testing.T) {
	ps, us := adoptedPair(100)
	f := newFixture(t, ps, us)
	flaky := &flakyStore{Store: f.eco, conflicts: 10}
	obs := &countingObserver{}
	svc := economy.NewService(flaky, f.rec, nil).WithObserver(obs).WithAttempts(2)

	_, err := svc.Feed(context.Background(), 1, 1, false)
	assert.ErrorIs(t, err, recordstore.ErrConflict)
	assert.Equal(t, 2, flaky.commits)
	assert.Equal(t, 1, obs.ops["feed/error"])
	assert.Empty(t, f.rec.all())
}

func TestConcurrentAdopt_OnlyOneWins(t *testing.T) {
	f := newFixture(t, []pets.Pet{shelterPet(1, "Milo")}, []users.User{member(1, 100), member(2, 100)})
	svc := f.svc.WithAttempts(10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Adopt(context.Background(), int64(i+1), 1)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, pets.ErrAlreadyAdopted), "got %v", err)
	}
	assert.Equal(t, 1, wins)

	p := f.pet(t, 1)
	owner := *p.AdoptedBy
	assert.True(t, f.user(t, owner).HasPet(1))
	assert.False(t, f.user(t, 3-owner).HasPet(1))
}

func TestConcurrentPurchases_NoLostUpdates(t *testing.T) {
	f := newFixture(t, nil, []users.User{member(1, 100)})
	svc := f.svc.WithAttempts(50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), 1, users.ItemFood)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u := f.user(t, 1)
	assert.Equal(t, 60, u.Budget)
	assert.Equal(t, 8, u.Inventory.Food)
}
