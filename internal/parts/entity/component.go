package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MakeOrBuy make-or-buy classification
type MakeOrBuy string

const (
	MakeOrBuyMake MakeOrBuy = "make"
	MakeOrBuyBuy  MakeOrBuy = "buy"
)

// Valid reports whether m is one of the known classifications. Empty is allowed.
func (m MakeOrBuy) Valid() bool {
	return m == "" || m == MakeOrBuyMake || m == MakeOrBuyBuy
}

// Component 零件/组件目录条目
type Component struct {
	ID                 string              `json:"id" gorm:"primaryKey;size:36"`
	Number             string              `json:"number" gorm:"size:50;uniqueIndex;not null"`
	Name               string              `json:"name" gorm:"size:200;not null"`
	Description        string              `json:"description" gorm:"size:1000"`
	Revision           string              `json:"revision" gorm:"size:10;default:1"`
	LifecycleState     string              `json:"lifecycle_state" gorm:"size:50;default:In Work"`
	Owner              string              `json:"owner" gorm:"size:100"`
	Material           string              `json:"material" gorm:"size:100"`
	Mass               *float64            `json:"mass,omitempty"`
	DimensionX         *float64            `json:"dimension_x,omitempty"`
	DimensionY         *float64            `json:"dimension_y,omitempty"`
	DimensionZ         *float64            `json:"dimension_z,omitempty"`
	Quantity           int                 `json:"quantity" gorm:"not null;default:0"`
	LeadTime           *int                `json:"lead_time,omitempty"` // days
	MakeOrBuy          MakeOrBuy           `json:"make_or_buy,omitempty" gorm:"size:10"`
	ManufacturerNumber string              `json:"manufacturer_number,omitempty" gorm:"size:100"`
	UnitPrice          decimal.NullDecimal `json:"unit_price" gorm:"type:numeric(10,2)"`
	Currency           string              `json:"currency,omitempty" gorm:"size:3"`
	SupplierID         *string             `json:"supplier_id,omitempty" gorm:"size:36;index"`
	CADFileID          *string             `json:"cad_file_id,omitempty" gorm:"size:36;uniqueIndex"`
	Attributes         datatypes.JSONMap   `json:"attributes,omitempty"`
	Archived           bool                `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	// Relations
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	CADFile  *File     `json:"cad_file,omitempty" gorm:"foreignKey:CADFileID"`
	Files    []File    `json:"files,omitempty" gorm:"-"` // filled from component_files
}

func (Component) TableName() string {
	return "components"
}

// ComponentComponent 层级边：父组件由子组件组成
type ComponentComponent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ParentID  string    `json:"parent_id" gorm:"size:36;not null;uniqueIndex:idx_component_parent_child;index"`
	ChildID   string    `json:"child_id" gorm:"size:36;not null;uniqueIndex:idx_component_parent_child;index"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`

	Parent *Component `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Child  *Component `json:"child,omitempty" gorm:"foreignKey:ChildID"`
}

func (ComponentComponent) TableName() string {
	return "component_components"
}

// ComponentFile 组件附件关联
type ComponentFile struct {
	ComponentID string    `json:"component_id" gorm:"primaryKey;size:36"`
	FileID      string    `json:"file_id" gorm:"primaryKey;size:36"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ComponentFile) TableName() string {
	return "component_files"
}
