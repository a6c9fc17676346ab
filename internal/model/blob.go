package model

// Blob содержимое документа для DB-бэкенда хранилища. ID совпадает с ID ссылки.
type Blob struct {
	ID string `gorm:"primaryKey;type:uuid"`

	ContentType string
	Data        []byte `gorm:"not null"`
}
