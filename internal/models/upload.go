package models

// FileUploadModel stores an uploaded document. File is the storage key.
type FileUploadModel struct {
	Base
	File         string `json:"file"          gorm:"size:512;not null"`
	OriginalName string `json:"original_name" gorm:"size:255"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"  gorm:"size:127"`
}

func (FileUploadModel) TableName() string { return "file_uploads" }

// ImageUploadModel stores an uploaded image. Image is the storage key.
type ImageUploadModel struct {
	Base
	Image        string `json:"image"         gorm:"size:512;not null"`
	OriginalName string `json:"original_name" gorm:"size:255"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"  gorm:"size:127"`
}

func (ImageUploadModel) TableName() string { return "image_uploads" }
