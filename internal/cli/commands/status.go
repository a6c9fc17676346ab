package commands

import (
	"context"
	"fmt"
	"net/http"

	"DocBase/internal/cli/api"
	"DocBase/internal/config"
)

type dataResponse struct {
	Result string `json:"result"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show current authorization status" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	resp, body, err := api.PostJSONContext(ctx, endpoint(cfg, "/api/user/test"), struct{}{}, loadToken(cfg))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.ResponseError(resp, body)
	}
	var dr dataResponse
	if err := decodeBody(body, &dr); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Status:", dr.Result)
	if login, err := authStore(cfg).LoadLogin(); err == nil {
		fmt.Fprintln(Out, "Last login:", login)
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
