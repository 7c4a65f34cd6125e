package pets

import "context"

// Snapshot es la colección completa de mascotas tal como se leyó,
// con la revisión que hay que presentar al guardar.
type Snapshot struct {
	Pets     []Pet
	Revision uint64
}

// Index devuelve la posición de la mascota id, o -1.
func (s Snapshot) Index(id int64) int {
	for i, p := range s.Pets {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// NextID sigue la convención max(id)+1.
func (s Snapshot) NextID() int64 {
	var max int64
	for _, p := range s.Pets {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

type Repository interface {
	LoadAll(ctx context.Context) (Snapshot, error)
	// SaveAll reemplaza la colección; recordstore.ErrConflict si Revision quedó vieja.
	SaveAll(ctx context.Context, s Snapshot) error
}
