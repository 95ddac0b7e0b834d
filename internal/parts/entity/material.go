package entity

import "time"

// Material 工程材料
// Property units: density kg/m³, moduli and strengths MPa, conductivity W/(m·K),
// specific heat J/(kg·K), expansion 1/K, temperatures °C.
type Material struct {
	ID                     string    `json:"id" gorm:"primaryKey;size:36"`
	Name                   string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Category               string    `json:"category" gorm:"size:50"`
	Density                *float64  `json:"density,omitempty"`
	YoungsModulus          *float64  `json:"youngs_modulus,omitempty"`
	ShearModulus           *float64  `json:"shear_modulus,omitempty"`
	PoissonRatio           *float64  `json:"poisson_ratio,omitempty"`
	TensileStrength        *float64  `json:"tensile_strength,omitempty"`
	YieldStrength          *float64  `json:"yield_strength,omitempty"`
	CompressiveStrength    *float64  `json:"compressive_strength,omitempty"`
	ElongationAtBreak      *float64  `json:"elongation_at_break,omitempty"`
	Hardness               *float64  `json:"hardness,omitempty"`
	ThermalConductivity    *float64  `json:"thermal_conductivity,omitempty"`
	SpecificHeat           *float64  `json:"specific_heat,omitempty"`
	ThermalExpansion       *float64  `json:"thermal_expansion,omitempty"`
	MeltingPoint           *float64  `json:"melting_point,omitempty"`
	MaxServiceTemperature  *float64  `json:"max_service_temperature,omitempty"`
	ElectricalConductivity *float64  `json:"electrical_conductivity,omitempty"`
	Archived               bool      `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "materials"
}
