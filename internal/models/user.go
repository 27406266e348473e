package models

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleUser   UserRole = "user"
)

type SocialLinks struct {
	Twitter   string `json:"twitter" gorm:"type:varchar(255)"`
	Instagram string `json:"instagram" gorm:"type:varchar(255)"`
	Facebook  string `json:"facebook" gorm:"type:varchar(255)"`
	LinkedIn  string `json:"linkedin" gorm:"type:varchar(255)"`
}

type User struct {
	BaseModel
	Name         string      `json:"name" gorm:"type:varchar(100);not null"`
	Email        string      `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string      `json:"-" gorm:"type:text;not null"`
	Role         UserRole    `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Bio          string      `json:"bio" gorm:"type:text"`
	ProfileImage string      `json:"profileImage" gorm:"type:text"`
	Interests    []string    `json:"interests" gorm:"serializer:json;type:text"`
	Location     string      `json:"location" gorm:"type:varchar(255)"`
	Website      string      `json:"website" gorm:"type:varchar(255)"`
	SocialLinks  SocialLinks `json:"socialLinks" gorm:"embedded;embeddedPrefix:social_"`
	Posts        []Post      `json:"-" gorm:"foreignKey:AuthorID"`
}

func ValidRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleEditor, UserRoleUser:
		return true
	default:
		return false
	}
}
