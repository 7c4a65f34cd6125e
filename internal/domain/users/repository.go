package users

import "context"

// Snapshot es la colección completa de usuarios con su revisión.
type Snapshot struct {
	Users    []User
	Revision uint64
}

func (s Snapshot) Index(id int64) int {
	for i, u := range s.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// IndexByEmail compara emails normalizados.
func (s Snapshot) IndexByEmail(email string) int {
	want := NormalizeEmail(email)
	for i, u := range s.Users {
		if NormalizeEmail(u.Email) == want {
			return i
		}
	}
	return -1
}

func (s Snapshot) NextID() int64 {
	var max int64
	for _, u := range s.Users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

type Repository interface {
	LoadAll(ctx context.Context) (Snapshot, error)
	SaveAll(ctx context.Context, s Snapshot) error
}
