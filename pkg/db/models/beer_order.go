package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
)

// BeerOrder is the aggregate root for an order and its lines.
type BeerOrder struct {
	ID            int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	Version       int64                 `gorm:"column:version;not null"`
	CustomerRef   *string               `gorm:"column:customer_ref"`
	PaymentAmount decimal.Decimal       `gorm:"column:payment_amount;type:numeric(12,2);not null"`
	Status        enums.BeerOrderStatus `gorm:"column:status;not null"`
	Lines         []BeerOrderLine       `gorm:"foreignKey:BeerOrderID;constraint:OnDelete:CASCADE"`
	CreatedDate   time.Time             `gorm:"column:created_date;autoCreateTime"`
	UpdatedDate   time.Time             `gorm:"column:updated_date;autoUpdateTime"`
}

func (BeerOrder) TableName() string { return "beer_order" }

// AddLine attaches line to the order and points its back-reference at o.
func (o *BeerOrder) AddLine(line BeerOrderLine) {
	line.BeerOrderID = o.ID
	o.Lines = append(o.Lines, line)
}

// RemoveLine detaches the line at index i and clears its back-reference. The
// detached line is returned so the caller can delete it.
func (o *BeerOrder) RemoveLine(i int) (BeerOrderLine, bool) {
	if i < 0 || i >= len(o.Lines) {
		return BeerOrderLine{}, false
	}
	line := o.Lines[i]
	line.BeerOrderID = 0
	o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
	return line, true
}
