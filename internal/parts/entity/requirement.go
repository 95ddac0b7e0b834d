package entity

import "time"

// RequirementType 需求分类
type RequirementType string

const (
	RequirementMandatory RequirementType = "mandatory"
	RequirementMinimum   RequirementType = "minimum"
	RequirementDesirable RequirementType = "desirable"
)

// Requirement 需求（当前流程未使用）
type Requirement struct {
	ID                 string          `json:"id" gorm:"primaryKey;size:36"`
	Title              string          `json:"title" gorm:"size:200;not null"`
	Description        string          `json:"description" gorm:"type:text"`
	Type               RequirementType `json:"type" gorm:"size:16;not null;default:desirable"`
	AcceptanceCriteria string          `json:"acceptance_criteria" gorm:"type:text"`
	Owner              string          `json:"owner" gorm:"size:100"`
	Source             string          `json:"source" gorm:"size:200"`
	Archived           bool            `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Requirement) TableName() string {
	return "requirements"
}
