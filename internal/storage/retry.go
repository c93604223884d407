package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	retryAttempts = 3
	retryDelay    = 200 * time.Millisecond
)

// Retry runs op with bounded retry on transient store errors. Domain
// conditions (ErrNotFound, ErrDuplicateKey, ErrInvalidInput) are terminal
// and returned immediately.
func Retry(ctx context.Context, op func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, ErrNotFound) ||
			errors.Is(err, ErrDuplicateKey) ||
			errors.Is(err, ErrInvalidInput) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(retryDelay)),
		backoff.WithMaxTries(retryAttempts),
	)
	return err
}
