package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Loader attaches one named relation to an already loaded record
type Loader[T any] func(ctx context.Context, db *gorm.DB, rec *T) error

// Resource the list/find/create/patch/delete operations shared by every entity table.
// Models carrying gorm.DeletedAt are soft deleted and hidden from reads.
type Resource[T any] struct {
	db        *gorm.DB
	columns   []SearchColumn
	relations map[string]Loader[T]
}

func NewResource[T any](db *gorm.DB, columns ...SearchColumn) *Resource[T] {
	return &Resource[T]{
		db:        db,
		columns:   columns,
		relations: make(map[string]Loader[T]),
	}
}

// Relation registers a loader used by EagerLoad
func (r *Resource[T]) Relation(name string, fn Loader[T]) *Resource[T] {
	r.relations[name] = fn
	return r
}

// List default mode pages newest first. A search term switches to oldest first with
// a fixed page size; All returns every record newest first and wins over search.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) (*Page[T], error) {
	q = q.Normalize()
	db := r.db.WithContext(ctx).Model(new(T))

	switch {
	case q.All:
		var rows []T
		if err := db.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
			return nil, translate(err, "list all")
		}
		return newPage(rows, int64(len(rows)), 1, len(rows)), nil
	case q.Search != "":
		return paginate[T](searchScope(db, q.Search, r.columns), q.Page, SearchPerPage, "created_at ASC", "id ASC")
	default:
		return paginate[T](db, q.Page, q.PerPage, "created_at DESC", "id DESC")
	}
}

// Find fails fast with ErrNotFound
func (r *Resource[T]) Find(ctx context.Context, id int64) (*T, error) {
	rec := new(T)
	if err := r.db.WithContext(ctx).First(rec, id).Error; err != nil {
		return nil, translate(err, "find")
	}
	return rec, nil
}

func (r *Resource[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate(err, "exists")
	}
	return n > 0, nil
}

func (r *Resource[T]) Create(ctx context.Context, rec *T) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error, "create")
}

// Patch writes only the given columns plus updated_at and reports the affected rows.
func (r *Resource[T]) Patch(ctx context.Context, id int64, fields map[string]interface{}) (int64, error) {
	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = time.Now()

	tx := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return 0, translate(tx.Error, "patch")
	}
	return tx.RowsAffected, nil
}

// Delete sets deleted_at on soft-delete models, removes the row otherwise.
func (r *Resource[T]) Delete(ctx context.Context, id int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if tx.Error != nil {
		return 0, translate(tx.Error, "delete")
	}
	return tx.RowsAffected, nil
}

func (r *Resource[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, translate(err, "count")
	}
	return n, nil
}

// EagerLoad attaches the named relations, always read from the store
func (r *Resource[T]) EagerLoad(ctx context.Context, rec *T, names ...string) error {
	for _, name := range names {
		fn, ok := r.relations[name]
		if !ok {
			return errors.Errorf("unknown relation %q", name)
		}
		if err := translate(fn(ctx, r.db.WithContext(ctx), rec), "load "+name); err != nil {
			return err
		}
	}
	return nil
}
