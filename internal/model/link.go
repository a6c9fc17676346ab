package model

import "time"

// Link выданный доступ к одному загруженному документу вместе с политикой доступа.
// ID используется как ключ объекта в хранилище блобов.
type Link struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	CreatedBy int64  `gorm:"not null;index"` // ссылка на users.id

	Filename string `gorm:"not null"`

	// PasswordHash bcrypt-хеш, сырой пароль никогда не хранится.
	PasswordHash *string `json:"-"`
	ExpiresAt    *time.Time

	AllowDownload         bool `gorm:"not null"`
	RequireEmail          bool `gorm:"not null;default:false"`
	RequireSignature      bool `gorm:"not null;default:false"`
	SignatureInstructions *string

	// Оформление страницы просмотра
	LogoURL     *string
	Heading     *string
	CoverLetter *string

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasPassword сообщает, защищена ли ссылка паролем.
func (l *Link) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// Expired истёк ли срок действия ссылки на момент now. Граница включительна.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}
