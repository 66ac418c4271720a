package models

import "time"

// Customer holds contact and address data. Email is unique.
type Customer struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Version      int64     `gorm:"column:version;not null"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:ux_customer_email"`
	Phone        *string   `gorm:"column:phone"`
	AddressLine1 string    `gorm:"column:address_line1;not null"`
	AddressLine2 *string   `gorm:"column:address_line2"`
	City         *string   `gorm:"column:city"`
	State        *string   `gorm:"column:state"`
	PostalCode   *string   `gorm:"column:postal_code"`
	CreatedDate  time.Time `gorm:"column:created_date;autoCreateTime"`
	UpdatedDate  time.Time `gorm:"column:updated_date;autoUpdateTime"`
}

func (Customer) TableName() string { return "customer" }
