package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

// LockTTL bounds how long a story lock survives a crashed holder.
const LockTTL = 30 * time.Second

// Storage persists stories and actor pools between requests.
// Load methods return nil, nil when the record does not exist.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveStory(ctx context.Context, s *plot.Story) error
	LoadStory(ctx context.Context, id uuid.UUID) (*plot.Story, error)
	DeleteStory(ctx context.Context, id uuid.UUID) error

	// LockStory takes an exclusive lock on a story for owner. It reports
	// false when someone else holds it.
	LockStory(ctx context.Context, id uuid.UUID, owner string) (bool, error)
	UnlockStory(ctx context.Context, id uuid.UUID, owner string) error

	SavePool(ctx context.Context, p *actor.Pool) error
	LoadPool(ctx context.Context, id uuid.UUID) (*actor.Pool, error)
}

func storyKey(id uuid.UUID) string { return "story:" + id.String() }
func lockKey(id uuid.UUID) string  { return "story-lock:" + id.String() }
func poolKey(id uuid.UUID) string  { return "pool:" + id.String() }
