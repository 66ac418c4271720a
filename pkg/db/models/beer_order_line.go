package models

import (
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
)

// BeerOrderLine is owned by exactly one BeerOrder and references one Beer.
type BeerOrderLine struct {
	ID                int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	Version           int64                 `gorm:"column:version;not null"`
	BeerOrderID       int64                 `gorm:"column:beer_order_id;not null;index:idx_bol_order"`
	BeerID            int64                 `gorm:"column:beer_id;not null;index:idx_bol_beer"`
	Beer              *Beer                 `gorm:"foreignKey:BeerID;constraint:OnDelete:RESTRICT"`
	OrderQuantity     int                   `gorm:"column:order_quantity;not null"`
	QuantityAllocated int                   `gorm:"column:quantity_allocated;not null"`
	Status            enums.OrderLineStatus `gorm:"column:status;not null"`
	CreatedDate       time.Time             `gorm:"column:created_date;autoCreateTime"`
	UpdatedDate       time.Time             `gorm:"column:updated_date;autoUpdateTime"`
}

func (BeerOrderLine) TableName() string { return "beer_order_line" }
