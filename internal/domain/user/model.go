package user

import "time"

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"size:255;not null"`
	PhotoURL     *string   `gorm:"column:photo_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type AuthResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}
