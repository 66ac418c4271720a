package models

import (
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
)

// BeerOrderShipment tracks delivery of an order. BeerOrderID is fixed at
// creation.
type BeerOrderShipment struct {
	ID             int64                `gorm:"column:id;primaryKey;autoIncrement"`
	Version        int64                `gorm:"column:version;not null"`
	BeerOrderID    int64                `gorm:"column:beer_order_id;not null;index:idx_bos_order"`
	ShipmentStatus enums.ShipmentStatus `gorm:"column:shipment_status;not null;index:idx_bos_status"`
	ShippedDate    *time.Time           `gorm:"column:shipped_date"`
	TrackingNumber *string              `gorm:"column:tracking_number"`
	Carrier        *string              `gorm:"column:carrier"`
	Notes          *string              `gorm:"column:notes;size:1000"`
	CreatedDate    time.Time            `gorm:"column:created_date;autoCreateTime"`
	UpdatedDate    time.Time            `gorm:"column:updated_date;autoUpdateTime"`
}

func (BeerOrderShipment) TableName() string { return "beer_order_shipment" }
