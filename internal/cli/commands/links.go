package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"DocBase/internal/cli/api"
	"DocBase/internal/config"
)

// linkView ответ сервера по ссылке.
type linkView struct {
	ID               string     `json:"id"`
	Filename         string     `json:"filename"`
	HasPassword      bool       `json:"has_password"`
	ExpiresAt        *time.Time `json:"expires_at"`
	AllowDownload    bool       `json:"allow_download"`
	RequireEmail     bool       `json:"require_email"`
	RequireSignature bool       `json:"require_signature"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (l linkView) flags() string {
	s := ""
	if l.HasPassword {
		s += "P"
	}
	if l.RequireEmail {
		s += "E"
	}
	if l.RequireSignature {
		s += "S"
	}
	if l.AllowDownload {
		s += "D"
	}
	if s == "" {
		s = "-"
	}
	return s
}

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a document and create a share link" }
func (uploadCmd) Usage() string {
	return "upload [--password p] [--expires 24h] [--require-email] [--require-signature] [--no-download] <file>"
}

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("upload")
	password := fs.String("password", "", "")
	expires := fs.Duration("expires", 0, "")
	requireEmail := fs.Bool("require-email", false, "")
	requireSignature := fs.Bool("require-signature", false, "")
	noDownload := fs.Bool("no-download", false, "")
	instructions := fs.String("instructions", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 || *expires < 0 {
		return ErrUsage
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fields := map[string]string{
		"allow_download":    strconv.FormatBool(!*noDownload),
		"require_email":     strconv.FormatBool(*requireEmail),
		"require_signature": strconv.FormatBool(*requireSignature),
	}
	if *password != "" {
		fields["password"] = *password
	}
	if *expires > 0 {
		fields["expires_at"] = time.Now().Add(*expires).UTC().Format(time.RFC3339)
	}
	if *instructions != "" {
		fields["signature_instructions"] = *instructions
	}

	resp, body, err := api.PostMultipartFile(ctx, endpoint(cfg, "/api/links"), fields, filepath.Base(path), data, loadToken(cfg))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("not logged in")
	}
	if resp.StatusCode != http.StatusCreated {
		return api.ResponseError(resp, body)
	}
	var l linkView
	if err := decodeBody(body, &l); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created link %s for %s\n", l.ID, l.Filename)
	fmt.Fprintf(Out, "Share URL: %s\n", endpoint(cfg, fmt.Sprintf("/api/view-document/%s", url.PathEscape(l.ID))))
	return nil
}

type linksCmd struct{}

func (linksCmd) Name() string { return "links" }
func (linksCmd) Description() string {
	return "List your share links (P password, E email, S sign, D download)"
}
func (linksCmd) Usage() string { return "links" }

func (linksCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	resp, body, err := api.Get(ctx, endpoint(cfg, "/api/links"), loadToken(cfg), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.ResponseError(resp, body)
	}
	var links []linkView
	if err := decodeBody(body, &links); err != nil {
		return err
	}
	if len(links) == 0 {
		fmt.Fprintln(Out, "No links")
		return nil
	}
	for _, l := range links {
		exp := "never"
		if l.ExpiresAt != nil {
			exp = l.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(Out, "%s  %-4s  expires=%s  %s\n", l.ID, l.flags(), exp, l.Filename)
	}
	return nil
}

type deleteCmd struct{}

func (deleteCmd) Name() string        { return "delete" }
func (deleteCmd) Description() string { return "Delete a share link with its document" }
func (deleteCmd) Usage() string       { return "delete <link-id>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	resp, body, err := api.Delete(ctx, endpoint(cfg, fmt.Sprintf("/api/links/%s", url.PathEscape(args[0]))), loadToken(cfg))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return api.ResponseError(resp, body)
	}
	fmt.Fprintln(Out, "Deleted", args[0])
	return nil
}

type analyticsCmd struct{}

func (analyticsCmd) Name() string        { return "analytics" }
func (analyticsCmd) Description() string { return "Show viewer statistics of a link" }
func (analyticsCmd) Usage() string       { return "analytics <link-id>" }

func (analyticsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	resp, body, err := api.Get(ctx, endpoint(cfg, fmt.Sprintf("/api/links/%s/analytics", url.PathEscape(args[0]))), loadToken(cfg), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.ResponseError(resp, body)
	}
	var stats struct {
		AllViewers    int64 `json:"all_viewers"`
		UniqueViewers int64 `json:"unique_viewers"`
		Viewers       []struct {
			Email    string
			ViewedAt time.Time
		} `json:"viewers"`
	}
	if err := decodeBody(body, &stats); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Views: %d, unique viewers: %d\n", stats.AllViewers, stats.UniqueViewers)
	for _, v := range stats.Viewers {
		fmt.Fprintf(Out, "  %s  %s\n", v.ViewedAt.Format(time.RFC3339), v.Email)
	}
	return nil
}

func init() {
	RegisterCmd(uploadCmd{})
	RegisterCmd(linksCmd{})
	RegisterCmd(deleteCmd{})
	RegisterCmd(analyticsCmd{})
}
