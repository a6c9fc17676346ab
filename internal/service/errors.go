package service

import "errors"

var (
	ErrLinkNotFound         = errors.New("link not found")
	ErrNotOwner             = errors.New("not the link owner")
	ErrLinkExpired          = errors.New("link has expired")
	ErrSignatureNotRequired = errors.New("link does not require a signature")
	ErrDownloadNotAllowed   = errors.New("download not allowed")

	// ErrDuplicateSignature подписант уже подписал ссылку; вместе с ошибкой возвращается существующая запись.
	ErrDuplicateSignature = errors.New("signature already recorded")
	ErrConsentRequired    = errors.New("electronic signature consent is required")
	ErrInvalidSignature   = errors.New("invalid signature request")

	ErrLoginTaken         = errors.New("login already in use")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidMagicLink   = errors.New("invalid or expired magic link")
	ErrInvalidInput       = errors.New("invalid input")
)
