package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"DocBase/internal/cli/repo"
)

// AuthFSStore файловое хранилище токена и контекста пользователя для CLI.
// TokenFile переопределяет путь к токену; по умолчанию <UserConfigDir>/DocBase/auth_token.
type AuthFSStore struct {
	TokenFile string
}

var (
	_ repo.TokenStore       = AuthFSStore{}
	_ repo.UserContextStore = AuthFSStore{}
)

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "DocBase")
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func (s AuthFSStore) tokenPath() (string, error) {
	if s.TokenFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.TokenFile), 0o700); err != nil {
			return "", err
		}
		return s.TokenFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth_token"), nil
}

func lastLoginPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last_login"), nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	tok := strings.TrimRight(string(b), "\r\n\t ")
	if tok == "" {
		return "", errors.New("empty token file")
	}
	return tok, nil
}

// SaveLogin сохраняет email последнего вошедшего пользователя.
func (AuthFSStore) SaveLogin(email string) error {
	if email == "" {
		return errors.New("empty login")
	}
	p, err := lastLoginPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(email), 0o600)
}

// LoadLogin читает email последнего вошедшего пользователя.
func (AuthFSStore) LoadLogin() (string, error) {
	p, err := lastLoginPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	login := strings.TrimRight(string(b), "\r\n\t ")
	if login == "" {
		return "", errors.New("no stored login")
	}
	return login, nil
}
