package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrStaleVersion is returned by UpdateVersioned when the row exists but its
// version no longer matches the expected one.
var ErrStaleVersion = errors.New("stale version")

// Base provides a shared foundation for domain repositories.
type Base struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a copy of b whose queries run on tx. A nil tx keeps the
// current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	b.db = tx
	return b
}

// Exists reports whether a row of model's table has the given id.
func (b Base) Exists(ctx context.Context, model any, id int64) (bool, error) {
	var count int64
	if err := b.DB(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountWhere counts the rows of model's table matching query.
func (b Base) CountWhere(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var count int64
	if err := b.DB(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateVersioned writes columns to the row identified by id only while its
// version still equals expected, bumping version and updated_date in the same
// statement. It returns the new version.
//
// When no row is affected the row is looked up again: a missing row yields
// gorm.ErrRecordNotFound, a present one ErrStaleVersion.
func (b Base) UpdateVersioned(ctx context.Context, model any, id, expected int64, columns map[string]any) (int64, error) {
	values := make(map[string]any, len(columns)+2)
	for column, value := range columns {
		values[column] = value
	}
	values["version"] = gorm.Expr("version + 1")
	values["updated_date"] = b.now()

	res := b.DB(ctx).Model(model).
		Where("id = ? AND version = ?", id, expected).
		UpdateColumns(values)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		return expected + 1, nil
	}

	exists, err := b.Exists(ctx, model, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, gorm.ErrRecordNotFound
	}
	return 0, ErrStaleVersion
}
