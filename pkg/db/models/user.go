package models

import "time"

// User represents an account that can authenticate against the API.
type User struct {
	ID           uint       `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;size:80;not null;uniqueIndex"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsAdmin      bool       `gorm:"column:is_admin;not null;default:false"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
