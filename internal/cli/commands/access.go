package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"DocBase/internal/cli/api"
	"DocBase/internal/config"
)

type accessCmd struct{}

func (accessCmd) Name() string        { return "access" }
func (accessCmd) Description() string { return "Open a shared document (saves it with --out)" }
func (accessCmd) Usage() string {
	return "access [--password p] [--email e] [--out file] <link-id>"
}

func (accessCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("access")
	password := fs.String("password", "", "")
	email := fs.String("email", "", "")
	out := fs.String("out", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	linkID := fs.Arg(0)
	token := loadToken(cfg)

	if *out == "" {
		// только проверка доступа: сервер вернёт временный URL документа
		resp, body, err := api.PostJSONContext(ctx, endpoint(cfg, fmt.Sprintf("/api/links/%s/access", url.PathEscape(linkID))),
			map[string]string{"password": *password, "email": *email}, token)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return api.ResponseError(resp, body)
		}
		var granted struct {
			URL  string `json:"url"`
			Link struct {
				Filename         string `json:"filename"`
				RequireSignature bool   `json:"require_signature"`
			} `json:"link"`
		}
		if err := decodeBody(body, &granted); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Access granted to %s\n", granted.Link.Filename)
		fmt.Fprintf(Out, "Document URL: %s\n", granted.URL)
		if granted.Link.RequireSignature {
			fmt.Fprintf(Out, "This document requests your signature: sign %s <name> <signature-file>\n", linkID)
		}
		return nil
	}

	q := url.Values{}
	if *email != "" {
		q.Set("email", *email)
	}
	u := endpoint(cfg, fmt.Sprintf("/api/view-document/%s", url.PathEscape(linkID)))
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	headers := map[string]string{}
	if *password != "" {
		headers["X-Link-Password"] = *password
	}
	resp, body, err := api.Get(ctx, u, token, headers)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.ResponseError(resp, body)
	}
	if err := os.WriteFile(*out, body, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %d bytes to %s\n", len(body), *out)
	return nil
}

func init() { RegisterCmd(accessCmd{}) }
