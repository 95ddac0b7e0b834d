package entity

import "time"

// File 上传的文件（CAD模型或普通文档）
// StoredName is the object key in the storage area: the file id plus the original extension.
type File struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	StoredName   string    `json:"stored_name" gorm:"size:64;uniqueIndex;not null"`
	OriginalName string    `json:"original_name" gorm:"size:256"`
	Description  string    `json:"description" gorm:"size:1000"`
	ContentType  string    `json:"content_type,omitempty" gorm:"size:128"`
	Size         int64     `json:"size" gorm:"default:0"`
	Archived     bool      `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (File) TableName() string {
	return "files"
}
