package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	clirepo "DocBase/internal/cli/repo"
)

// ErrDenied сервер вернул отказ политики ссылки.
var ErrDenied = errors.New("access denied")

// DeniedError отказ с кодом решения сервера (denied_expired, denied_password_required, ...).
type DeniedError struct {
	Decision string
}

func (e *DeniedError) Error() string { return ErrDenied.Error() + ": " + e.Decision }

func (e *DeniedError) Is(target error) bool { return target == ErrDenied }

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	return PostJSONContext(context.Background(), url, payload, token)
}

// PostJSONContext PostJSON с контекстом запроса.
func PostJSONContext(ctx context.Context, url string, payload any, token string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doTrimmed(req, token)
}

// Get выполняет GET-запрос; тело возвращается без изменений (документ может быть бинарным).
// headers дополнительные заголовки, например пароль ссылки.
func Get(ctx context.Context, url, token string, headers map[string]string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(req, token)
}

// PostMultipartFile загружает файл в поле "file" вместе с текстовыми полями формы.
func PostMultipartFile(ctx context.Context, url string, fields map[string]string, filename string, data []byte, token string) (*http.Response, []byte, error) {
	if filename == "" {
		return nil, nil, errors.New("empty filename")
	}
	if len(data) == 0 {
		return nil, nil, errors.New("empty file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, nil, err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return doTrimmed(req, token)
}

func do(req *http.Request, token string) (*http.Response, []byte, error) {
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func doTrimmed(req *http.Request, token string) (*http.Response, []byte, error) {
	resp, body, err := do(req, token)
	return resp, bytes.TrimSpace(body), err
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в хранилище токена.
func PersistAuthFromResponse(resp *http.Response, store clirepo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}

// ResponseError превращает неуспешный ответ в ошибку. Отказ политики
// ({"decision": "..."}) возвращается как *DeniedError.
func ResponseError(resp *http.Response, body []byte) error {
	var d struct {
		Decision string `json:"decision"`
	}
	if json.Unmarshal(bytes.TrimSpace(body), &d) == nil && d.Decision != "" {
		return &DeniedError{Decision: d.Decision}
	}
	return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// Delete выполняет DELETE-запрос.
func Delete(ctx context.Context, url, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, nil, err
	}
	return do(req, token)
}
