package models

import "github.com/google/uuid"

type ExamQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	QuestionNum   int       `gorm:"not null" json:"question_num"`
	Statement     string    `gorm:"type:text;not null" json:"statement"`
	Option1       string    `gorm:"type:text;not null" json:"option_1"`
	Option2       string    `gorm:"type:text;not null" json:"option_2"`
	Option3       string    `gorm:"type:text;not null" json:"option_3"`
	Option4       string    `gorm:"type:text;not null" json:"option_4"`
	Option5       string    `gorm:"type:text;not null" json:"option_5"`
	CorrectOption int       `gorm:"not null" json:"-"`

	Course Course `gorm:"foreignkey:CourseID" json:"-"`
}
