package model

import (
	"time"
)

type User struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	Name            string     `db:"name" json:"name"`
	PasswordHash    *string    `db:"password_hash" json:"-"` // Nullable for OAuth-only users
	AvatarURL       *string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
