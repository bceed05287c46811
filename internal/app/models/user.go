package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID            int64     `json:"id" db:"id" example:"1"`
	Name          string    `json:"name" db:"name" example:"Alice"`
	Email         string    `json:"email" db:"email" example:"alice@nitc.ac.in"`
	Password      string    `json:"-" db:"password_hash"`
	Avatar        *string   `json:"avatar,omitempty" db:"avatar" example:"https://cdn.example.com/a.png"`
	College       string    `json:"college" db:"college" example:"NIT Calicut"`
	Interests     []string  `json:"interests" db:"interests"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public slice of a user embedded in other resources
type UserSummary struct {
	ID     int64   `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	Avatar *string `json:"avatar,omitempty" db:"avatar"`
}

// Summary returns the public fields of u
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
