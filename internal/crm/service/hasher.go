package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/aussiebroadwan/salesdesk/pkg/cryptox"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher runs bcrypt with a bound on how many hashes execute at
// once, so a burst of sign-ins cannot starve the rest of the process of CPU.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted

	dummyOnce sync.Once
	dummyHash string
}

// NewPasswordHasher creates a hasher. A concurrency below one uses the number
// of CPUs.
func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency))}
}

// acquire waits for a hashing slot. Giving up because ctx ended yields
// ErrOverloaded.
func (h *PasswordHasher) acquire(ctx context.Context) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrOverloaded, err)
	}
	return nil
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	return cryptox.HashPassword(password, h.cost)
}

// NeedsRehash reports whether hash was produced with a lower work factor
// than the hasher's.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	cost, err := cryptox.HashCost(hash)
	return err != nil || cost < h.cost
}

// Verify returns cryptox.ErrMismatch for a wrong password and ErrOverloaded
// when no slot frees up before ctx ends.
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) error {
	if err := h.acquire(ctx); err != nil {
		return err
	}
	defer h.sem.Release(1)

	return cryptox.VerifyPassword(password, hash)
}

// VerifyDummy spends the same work as Verify against a hash that matches no
// password. Sign-in uses it for unknown emails so timing does not reveal
// which accounts exist. Only ErrOverloaded is returned.
func (h *PasswordHasher) VerifyDummy(ctx context.Context, password string) error {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = cryptox.HashPassword("salesdesk-dummy-password", h.cost)
	})
	if err := h.Verify(ctx, password+"\x00", h.dummyHash); errors.Is(err, ErrOverloaded) {
		return err
	}
	return nil
}
