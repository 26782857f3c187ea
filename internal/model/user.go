// Package model defines the data models for the blogging platform.
package model

import "time"

// User represents a registered account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Email     string    `json:"email" gorm:"size:128;not null;uniqueIndex:uk_email"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt digest
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "users"
}
