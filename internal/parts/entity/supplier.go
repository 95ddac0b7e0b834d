package entity

import "time"

// Supplier 供应商
type Supplier struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:1000"`
	Street      string    `json:"street" gorm:"size:200"`
	HouseNumber string    `json:"house_number" gorm:"size:20"`
	PostalCode  string    `json:"postal_code" gorm:"size:20"`
	City        string    `json:"city" gorm:"size:100"`
	Country     string    `json:"country" gorm:"size:100"`
	Archived    bool      `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Components []Component `json:"components,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
