package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	FullName       string `gorm:"not null" json:"full_name"`
	HashedPassword string `gorm:"not null" json:"-"`
	Role           string `gorm:"not null;default:'user'" json:"role"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
