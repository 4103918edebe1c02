package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      *string   `gorm:"type:text" json:"description"`
	ShortDescription *string   `gorm:"type:text" json:"short_description"`
	Price            float64   `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Workload         *string   `gorm:"size:50" json:"workload"`
	ImageURL         *string   `gorm:"type:text" json:"image_url"`
	Num              *int      `json:"num"`
	Active           bool      `gorm:"not null;default:true" json:"active"`

	Videos []CourseVideo `gorm:"foreignkey:CourseID" json:"videos,omitempty"`
	Files  []CourseFile  `gorm:"foreignkey:CourseID" json:"files,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CourseVideo struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	YoutubeURL string    `gorm:"type:text;not null" json:"youtube_url"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`

	CreatedAt time.Time `json:"created_at"`
}

type CourseFile struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	FileURL  string    `gorm:"type:text;not null" json:"file_url"`

	CreatedAt time.Time `json:"created_at"`
}
