package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"DocBase/internal/cli/api"
	"DocBase/internal/config"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	err := authenticate(ctx, cfg, "/api/user/login", credentialsRequest{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and store auth cookie" }
func (registerCmd) Usage() string       { return "register <email> <password> [name]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	req := credentialsRequest{Email: args[0], Password: args[1]}
	if len(args) == 3 {
		req.Name = args[2]
	}
	if err := authenticate(ctx, cfg, "/api/user/register", req); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Registered successfully")
	return nil
}

// authenticate отправляет учётные данные и сохраняет cookie и email.
func authenticate(ctx context.Context, cfg *config.Config, path string, req credentialsRequest) error {
	resp, body, err := api.PostJSONContext(ctx, endpoint(cfg, path), req, "")
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return errors.New("invalid email or password")
	case http.StatusConflict:
		return errors.New("email already in use")
	default:
		return api.ResponseError(resp, body)
	}

	store := authStore(cfg)
	if err := api.PersistAuthFromResponse(resp, store); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := store.SaveLogin(req.Email); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(registerCmd{})
}
