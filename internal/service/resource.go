package service

import (
	"context"
	"errors"
	"time"

	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/repository"
)

const msgDuplicate = "Duplicate entry, the record already exists."

// storeErr maps repository failures onto the error taxonomy
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Duplicate(msgDuplicate, err)
	default:
		return apperr.Internal("", err)
	}
}

// cached read-through settings shared by the resource services
type cached struct {
	store cache.Store
	ttl   time.Duration
}

// show reads one record through the cache, then attaches relations fresh from the store
func show[T any](ctx context.Context, c cached, res *repository.Resource[T], resource string, id int64, notFound string, relations ...string) (*T, error) {
	rec, err := cache.Remember(ctx, c.store, resource, cache.Key(resource, id), c.ttl, func(ctx context.Context) (*T, error) {
		return res.Find(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, notFound)
	}
	if err := res.EagerLoad(ctx, rec, relations...); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// cached record whose parent is gone
			cache.Forget(ctx, c.store, cache.Key(resource, id))
		}
		return nil, storeErr(err, notFound)
	}
	return rec, nil
}

// patch requires the record to exist and exactly one row to change
func patch[T any](ctx context.Context, c cached, res *repository.Resource[T], resource string, id int64, fields map[string]interface{}, notFound, failed string) error {
	found, err := res.Exists(ctx, id)
	if err != nil {
		return storeErr(err, notFound)
	}
	if !found {
		return apperr.NotFound(notFound)
	}
	n, err := res.Patch(ctx, id, fields)
	if err != nil {
		return storeErr(err, notFound)
	}
	cache.Forget(ctx, c.store, cache.Key(resource, id))
	if n != 1 {
		return apperr.UpdateFailed(failed)
	}
	return nil
}

// destroy is non-strict, a missing row is not an error
func destroy[T any](ctx context.Context, c cached, res *repository.Resource[T], resource string, id int64, failed string) error {
	if _, err := res.Delete(ctx, id); err != nil {
		return apperr.Internal(failed, err)
	}
	cache.Forget(ctx, c.store, cache.Key(resource, id))
	return nil
}
