package application

import (
	"context"
	"io"
	"time"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

// Cache is the key/value surface backed by Redis. A nil Cache disables
// caching and every Redis-only feature degrades gracefully.
type Cache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ProjectIndexer mirrors projects into the search engine.
type ProjectIndexer interface {
	IndexProject(ctx context.Context, p *entity.Project) error
	DeleteProject(ctx context.Context, id string) error
	SearchProjects(ctx context.Context, q, excludeOwnerID string, size int) ([]string, error)
}

// JobPublisher enqueues background jobs such as outgoing email.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Cache keys.
const recommendationKeyspace = "matches:rec:"

func sessionCacheKey(sid string) string { return "session:" + sid }
func emailVerifyKey(userID string) string { return "email:verify:" + userID }
func passwordResetKey(token string) string { return "pwd:reset:token:" + token }
func recommendationPrefix(userID string) string { return recommendationKeyspace + userID + ":" }
