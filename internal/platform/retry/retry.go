// Package retry reintenta ciclos load→mutate→commit cuando el record store
// reporta un conflicto de revisión.
package retry

import (
	"context"
	"errors"
	"time"

	"pet-adoption-economy/internal/ports/recordstore"

	"github.com/cenkalti/backoff/v5"
)

const DefaultAttempts = 3

// OnConflict ejecuta op hasta attempts veces mientras falle con recordstore.ErrConflict.
// Cualquier otro error corta en el primer intento.
func OnConflict[T any](ctx context.Context, attempts int, op func() (T, error)) (T, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, recordstore.ErrConflict) {
			return v, err
		}
		return v, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(attempts)))
}
