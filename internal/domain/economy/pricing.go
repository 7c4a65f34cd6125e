package economy

import (
	"fmt"

	"pet-adoption-economy/internal/domain/users"
)

// Item es un producto del shop.
type Item struct {
	Kind        users.ItemKind
	Price       int
	Description string
}

// ReturnFee se cobra al devolver una mascota al shelter.
const ReturnFee = 20

var catalog = []Item{
	{Kind: users.ItemFood, Price: 5, Description: "Pet food (reduces hunger by 20)"},
	{Kind: users.ItemToy, Price: 10, Description: "Pet toy (increases happiness by 20)"},
	{Kind: users.ItemTreat, Price: 3, Description: "Pet treat (reduces hunger by 10 and increases happiness by 10)"},
}

// Catalog devuelve una copia del catálogo del shop.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

func Price(kind users.ItemKind) (int, error) {
	for _, it := range catalog {
		if it.Kind == kind {
			return it.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", users.ErrUnknownItem, kind)
}
