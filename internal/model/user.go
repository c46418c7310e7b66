package model

import "time"

type User struct {
	UUID              string    `db:"uuid" json:"uuid"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	FullName          string    `db:"full_name" json:"full_name"`
	ProfilePictureURL *string   `db:"profile_picture_url" json:"profile_picture_url,omitempty"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	IsVerified        bool      `db:"is_verified" json:"is_verified"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
