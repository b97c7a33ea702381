package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pitchside/internal/models"
	"pitchside/internal/observability"
	"pitchside/internal/query"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeleteGuard runs before a delete and may refuse it by returning an error.
type DeleteGuard func(ctx context.Context, db *gorm.DB, id uint) error

// Resource is the shared data access path for every content resource. T is the model
// struct; the methods work on *T.
type Resource[T any] struct {
	db    *gorm.DB
	name  string
	table string
	spec  query.Spec
	guard DeleteGuard
}

// ResourceOption configures a Resource.
type ResourceOption func(*resourceOptions)

type resourceOptions struct {
	guard DeleteGuard
}

// WithDeleteGuard installs a check that runs before every delete.
func WithDeleteGuard(guard DeleteGuard) ResourceOption {
	return func(o *resourceOptions) { o.guard = guard }
}

// NewResource returns a Resource for T. name is the singular display name used in
// error messages, e.g. "Stream".
func NewResource[T any](db *gorm.DB, name string, spec query.Spec, opts ...ResourceOption) *Resource[T] {
	var o resourceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[T]{
		db:    db,
		name:  name,
		table: tableName(db, new(T)),
		spec:  spec,
		guard: o.guard,
	}
}

func tableName(db *gorm.DB, model any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Sprintf("%T", model)
	}
	return stmt.Schema.Table
}

// Name returns the display name of the resource.
func (r *Resource[T]) Name() string { return r.name }

// Spec returns the list description of the resource.
func (r *Resource[T]) Spec() query.Spec { return r.spec }

// List counts the rows matching p and returns the requested page. The count and the
// page are built from the same filter set.
func (r *Resource[T]) List(ctx context.Context, p query.Params) ([]T, int64, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", r.table)
	defer span.End()
	defer observability.TrackQuery("list", r.table)()

	build := func() *gorm.DB {
		return r.spec.Where(r.db.WithContext(ctx).Model(new(T)), p)
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, models.NewInternalError(fmt.Errorf("count %s: %w", r.table, err))
	}

	items := make([]T, 0)
	if total > 0 && int64(p.Offset()) < total {
		err := r.spec.Preload(build()).
			Clauses(r.spec.OrderBy(p.Sort)).
			Offset(p.Offset()).
			Limit(p.Limit).
			Find(&items).Error
		if err != nil {
			span.RecordError(err)
			return nil, 0, models.NewInternalError(fmt.Errorf("list %s: %w", r.table, err))
		}
	}

	span.SetAttributes(attribute.Int64("db.total", total), attribute.Int("db.rows", len(items)))
	return items, total, nil
}

// GetByID returns the populated record or a not-found error.
func (r *Resource[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	defer observability.TrackQuery("get", r.table)()

	rec := new(T)
	if err := r.spec.Preload(r.db.WithContext(ctx)).First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(r.name)
		}
		return nil, models.NewInternalError(err)
	}
	return rec, nil
}

// Create inserts rec and returns the stored, populated record.
func (r *Resource[T]) Create(ctx context.Context, rec *T) (*T, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", r.table)
	defer span.End()
	defer observability.TrackQuery("create", r.table)()

	if err := r.checkCategory(ctx, rec); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		span.RecordError(err)
		return nil, r.writeError(err)
	}
	return r.GetByID(ctx, recordID(rec))
}

// Update writes every field of rec and returns the stored, populated record.
func (r *Resource[T]) Update(ctx context.Context, rec *T) (*T, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", r.table)
	defer span.End()
	defer observability.TrackQuery("update", r.table)()

	if err := r.checkCategory(ctx, rec); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error; err != nil {
		span.RecordError(err)
		return nil, r.writeError(err)
	}
	return r.GetByID(ctx, recordID(rec))
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", r.table)
	defer span.End()
	defer observability.TrackQuery("delete", r.table)()

	db := r.db.WithContext(ctx)
	if r.guard != nil {
		if err := r.guard(ctx, db, id); err != nil {
			return err
		}
	}

	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		span.RecordError(res.Error)
		if isForeignKeyError(res.Error) {
			return models.NewConflictError(r.name+" is still referenced", res.Error)
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(r.name)
	}
	return nil
}

// Toggle flips a boolean column in a single statement and returns the updated record.
func (r *Resource[T]) Toggle(ctx context.Context, id uint, column string) (*T, error) {
	return r.updateColumn(ctx, "toggle", id, column, gorm.Expr("NOT ?", clause.Column{Name: column}))
}

// Increment adds one to a counter column in a single statement and returns the updated
// record. Concurrent increments never lose updates.
func (r *Resource[T]) Increment(ctx context.Context, id uint, column string) (*T, error) {
	return r.updateColumn(ctx, "increment", id, column, gorm.Expr("? + 1", clause.Column{Name: column}))
}

func (r *Resource[T]) updateColumn(ctx context.Context, op string, id uint, column string, expr clause.Expr) (*T, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, op, r.table)
	defer span.End()
	defer observability.TrackQuery(op, r.table)()

	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).UpdateColumns(map[string]any{
		column:       expr,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		span.RecordError(res.Error)
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError(r.name)
	}
	return r.GetByID(ctx, id)
}

// checkCategory rejects records that reference a category that does not exist.
func (r *Resource[T]) checkCategory(ctx context.Context, rec *T) error {
	ref, ok := any(rec).(models.CategoryReferrer)
	if !ok {
		return nil
	}
	id := ref.ReferencedCategoryID()
	if id == 0 {
		return models.NewValidationError("category is required")
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return models.NewInternalError(err)
	}
	if n == 0 {
		return models.NewValidationError("Category not found")
	}
	return nil
}

func (r *Resource[T]) writeError(err error) error {
	switch {
	case isUniqueConstraintError(err):
		return models.NewConflictError(r.name+" already exists", err)
	case isForeignKeyError(err):
		return models.NewValidationError("Category not found")
	default:
		return models.NewInternalError(err)
	}
}

func recordID(rec any) uint {
	if rr, ok := rec.(models.Record); ok {
		return rr.RecordID()
	}
	return 0
}
