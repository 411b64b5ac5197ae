// Package taxes stores and converts the tax items the mobile app tracks.
// Amounts are stored in the currency they were entered in (historically
// always LKR) and converted on demand.
package taxes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"index;not null" json:"category"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Currency  string    `gorm:"size:3;not null;default:LKR" json:"currency"`
	Year      int       `gorm:"index" json:"year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Item) TableName() string { return "tax_items" }

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Currency == "" {
		i.Currency = "LKR"
	}
	return nil
}
