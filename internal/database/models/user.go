package models

type Role string

const (
	RoleClient Role = "client"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	Role         Role   `gorm:"not null;default:'client'" json:"role"`
	IsMentor     bool   `gorm:"default:false" json:"isMentor"`
	IsActive     bool   `gorm:"default:true" json:"isActive"`

	// Mentor profile
	Bio       string `gorm:"type:text" json:"bio,omitempty"`
	Expertise string `json:"expertise,omitempty"`
}

func (User) TableName() string {
	return "users"
}
