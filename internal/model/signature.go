package model

import (
	"time"

	"gorm.io/datatypes"
)

type SignatureType string

const (
	SignatureDrawn    SignatureType = "drawn"
	SignatureUploaded SignatureType = "uploaded"
)

// Valid проверяет, что тип подписи известен.
func (t SignatureType) Valid() bool {
	return t == SignatureDrawn || t == SignatureUploaded
}

// Signature подпись одного подписанта под одной ссылкой. Неизменяема после создания.
type Signature struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	LinkID string `gorm:"type:uuid;not null;uniqueIndex:idx_signatures_link_signer,priority:1"`

	SignerEmail string `gorm:"not null;uniqueIndex:idx_signatures_link_signer,priority:2;index"`
	SignerName  string `gorm:"not null"`

	SignatureData   string        `gorm:"not null" json:"-"`
	SignatureType   SignatureType `gorm:"not null"`
	ConsentAccepted bool          `gorm:"not null"`
	UserAgent       string

	SignedAt time.Time `gorm:"not null;index"`
}

type EventType string

const (
	EventSigned               EventType = "signed"
	EventCertificateGenerated EventType = "certificate_generated"
)

// SignatureEvent запись журнала аудита, только добавление.
// Частичный уникальный индекс гарантирует не более одного certificate_generated на ссылку.
type SignatureEvent struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	LinkID string `gorm:"type:uuid;not null;index;index:idx_signature_events_certificate,unique,where:event_type = 'certificate_generated'"`

	EventType   EventType `gorm:"not null"`
	SignerEmail *string
	Metadata    datatypes.JSON
	UserAgent   string

	CreatedAt time.Time `gorm:"not null"`
}
