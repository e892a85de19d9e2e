package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const submitTokenTTL = time.Hour

// SubmitGuard makes each rendered form usable for one successful submit.
type SubmitGuard struct {
	rdb *redis.Client
}

func NewSubmitGuard(rdb *redis.Client) *SubmitGuard {
	return &SubmitGuard{rdb: rdb}
}

func (g *SubmitGuard) Issue() string {
	return uuid.NewString()
}

// Claim marks token as used. A second claim of the same token fails with
// ErrAlreadySubmitted.
func (g *SubmitGuard) Claim(ctx context.Context, token string) error {
	if token == "" {
		return ErrAlreadySubmitted
	}
	ok, err := g.rdb.SetNX(ctx, submitKey(token), time.Now().Unix(), submitTokenTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to claim submit token: %w", err)
	}
	if !ok {
		return ErrAlreadySubmitted
	}
	return nil
}

// Release lets the same form be submitted again after a failed attempt.
func (g *SubmitGuard) Release(ctx context.Context, token string) {
	g.rdb.Del(ctx, submitKey(token))
}

func submitKey(token string) string {
	return "submit_token:" + token
}
