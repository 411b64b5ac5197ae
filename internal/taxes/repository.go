package taxes

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Filter narrows a listing. Nil pointer fields mean "no constraint";
// Limit <= 0 falls back to the service default.
type Filter struct {
	Category string
	Year     *int
	Amount   *float64
	Limit    int
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]Item, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, item *Item) error
}

// GormRepository is the Postgres-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the tax_items table.
func (r *GormRepository) Migrate() error {
	if err := r.db.AutoMigrate(&Item{}); err != nil {
		return fmt.Errorf("migrate tax_items: %w", err)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, f Filter) ([]Item, error) {
	q := r.db.WithContext(ctx).Model(&Item{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}
	if f.Amount != nil {
		q = q.Where("amount = ?", *f.Amount)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var items []Item
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list tax items: %w", err)
	}
	return items, nil
}

func (r *GormRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).
		Model(&Item{}).
		Distinct("category").
		Order("category").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *GormRepository) Create(ctx context.Context, item *Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create tax item: %w", err)
	}
	return nil
}
