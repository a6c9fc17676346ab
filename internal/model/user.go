package model

import "time"

// User владелец ссылок либо зритель/подписант, вошедший по magic link.
type User struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Email string `gorm:"not null;uniqueIndex"`
	Name  string

	// Password bcrypt-хеш. Пустой у пользователей, созданных через magic link.
	Password string `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
