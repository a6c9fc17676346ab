package model

import "time"

// Viewer факт просмотра документа с захваченным email. Дубликаты допустимы.
type Viewer struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	LinkID   string    `gorm:"type:uuid;not null;index"`
	Email    string    `gorm:"not null"`
	ViewedAt time.Time `gorm:"not null"`
}
