package models

import "github.com/google/uuid"

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
)

// Post is a blog submission. Every post starts out pending and is moved to
// approved or rejected by a moderator. The image path is set once at
// submission time and never replaced.
type Post struct {
	BaseModel
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	ImagePath   string     `json:"imagePath" gorm:"type:text;not null"`
	ImageType   string     `json:"imageType" gorm:"type:varchar(255);not null"`
	AuthorID    uuid.UUID  `json:"authorID" gorm:"type:uuid;not null;index"`
	Status      PostStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`

	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
}
