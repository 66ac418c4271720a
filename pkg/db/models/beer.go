package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Beer is a catalog item. Version is the optimistic-lock token.
type Beer struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Version        int64           `gorm:"column:version;not null"`
	BeerName       string          `gorm:"column:beer_name;not null"`
	BeerStyle      string          `gorm:"column:beer_style;not null"`
	UPC            string          `gorm:"column:upc;not null"`
	QuantityOnHand int             `gorm:"column:quantity_on_hand;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Description    *string         `gorm:"column:description"`
	CreatedDate    time.Time       `gorm:"column:created_date;autoCreateTime"`
	UpdatedDate    time.Time       `gorm:"column:updated_date;autoUpdateTime"`
}

func (Beer) TableName() string { return "beer" }
