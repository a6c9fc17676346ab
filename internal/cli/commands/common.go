package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"DocBase/internal/config"

	clirepo "DocBase/internal/cli/repo"
	fsrepo "DocBase/internal/cli/repo/fs"
)

// endpoint склеивает адрес сервера с готовым путём; сегменты экранирует вызывающий.
func endpoint(cfg *config.Config, path string) string {
	return strings.TrimRight(cfg.ServerURL, "/") + path
}

// authStorage токен и email последнего входа клиента.
type authStorage interface {
	clirepo.TokenStore
	clirepo.UserContextStore
}

func authStore(cfg *config.Config) authStorage {
	return fsrepo.AuthFSStore{TokenFile: cfg.TokenFile}
}

// loadToken возвращает сохранённый токен; отсутствие токена не ошибка.
func loadToken(cfg *config.Config) string {
	tok, _ := authStore(cfg).Load()
	return tok
}

// newFlagSet флаги подкоманды; ошибки разбора возвращаются как ErrUsage.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func decodeBody(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
