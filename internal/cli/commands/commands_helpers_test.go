package commands

import (
	"path/filepath"
	"runtime"
	"testing"

	"DocBase/internal/config"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/логин) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

// testConfig конфиг клиента с токеном во временном каталоге.
func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := withTempConfig(t)
	return &config.Config{ServerURL: serverURL, TokenFile: filepath.Join(dir, "DocBase", "auth_token")}
}

// loggedIn сохраняет токен, как после успешного login.
func loggedIn(t *testing.T, cfg *config.Config, token string) {
	t.Helper()
	if err := authStore(cfg).Save(token); err != nil {
		t.Fatalf("save token: %v", err)
	}
}
