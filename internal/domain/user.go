package domain

import (
	"time"
)

// User an API operator able to authenticate with email and password
type User struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Firstname string        `gorm:"size:255;not null" json:"firstname"`
	Lastname  string        `gorm:"size:255;not null" json:"lastname"`
	Email     string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string        `gorm:"size:255;not null" json:"-"`
	Tokens    []AccessToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}

// AccessToken a bearer token issued to a user. ID is the jti of the signed token.
type AccessToken struct {
	ID         int64      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	UserID     int64      `gorm:"index;not null" json:"user_id"`
	Name       string     `gorm:"size:255" json:"name"`
	Abilities  string     `gorm:"size:255" json:"abilities"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (AccessToken) TableName() string {
	return "personal_access_tokens"
}

// Expired reports whether the token is past its lifetime at now
func (t *AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
