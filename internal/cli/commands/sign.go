package commands

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"DocBase/internal/cli/api"
	"DocBase/internal/config"
)

type signatureView struct {
	LinkID        string    `json:"link_id"`
	SignerEmail   string    `json:"signer_email"`
	SignerName    string    `json:"signer_name"`
	SignatureType string    `json:"signature_type"`
	SignedAt      time.Time `json:"signed_at"`
}

type signCmd struct{}

func (signCmd) Name() string        { return "sign" }
func (signCmd) Description() string { return "Sign a shared document with an image of your signature" }
func (signCmd) Usage() string       { return "sign --agree <link-id> <full-name> <signature-image>" }

func (signCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("sign")
	agree := fs.Bool("agree", false, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
		return ErrUsage
	}
	if !*agree {
		return errors.New("electronic signature consent required: pass --agree")
	}
	linkID, name, path := fs.Arg(0), fs.Arg(1), fs.Arg(2)
	img, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dataURL := "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img)

	resp, body, err := api.PostJSONContext(ctx, endpoint(cfg, fmt.Sprintf("/api/links/%s/sign", url.PathEscape(linkID))), map[string]any{
		"name":             name,
		"signature_data":   dataURL,
		"signature_type":   "uploaded",
		"consent_accepted": true,
	}, loadToken(cfg))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return api.ResponseError(resp, body)
	}
	var out struct {
		Signature     signatureView `json:"signature"`
		AlreadySigned bool          `json:"already_signed"`
		Complete      bool          `json:"complete"`
		Signers       []string      `json:"signers"`
	}
	if err := decodeBody(body, &out); err != nil {
		return err
	}
	if out.AlreadySigned {
		fmt.Fprintf(Out, "Already signed by %s at %s\n", out.Signature.SignerEmail, out.Signature.SignedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintf(Out, "Signed by %s\n", out.Signature.SignerEmail)
	}
	if out.Complete {
		fmt.Fprintf(Out, "Document fully signed (%d signers)\n", len(out.Signers))
	}
	return nil
}

type signersCmd struct{}

func (signersCmd) Name() string        { return "signers" }
func (signersCmd) Description() string { return "Show the signature history of a link" }
func (signersCmd) Usage() string       { return "signers <link-id>" }

func (signersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return printSignatures(ctx, cfg, endpoint(cfg, fmt.Sprintf("/api/links/%s/signatures", url.PathEscape(args[0]))))
}

type signedCmd struct{}

func (signedCmd) Name() string        { return "signed" }
func (signedCmd) Description() string { return "List documents you have signed" }
func (signedCmd) Usage() string       { return "signed" }

func (signedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return printSignatures(ctx, cfg, endpoint(cfg, "/api/signatures/mine"))
}

func printSignatures(ctx context.Context, cfg *config.Config, u string) error {
	resp, body, err := api.Get(ctx, u, loadToken(cfg), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return api.ResponseError(resp, body)
	}
	var sigs []signatureView
	if err := decodeBody(body, &sigs); err != nil {
		return err
	}
	if len(sigs) == 0 {
		fmt.Fprintln(Out, "No signatures")
		return nil
	}
	for _, s := range sigs {
		fmt.Fprintf(Out, "%s  %s  %s <%s>\n", s.SignedAt.Format(time.RFC3339), s.LinkID, s.SignerName, s.SignerEmail)
	}
	return nil
}

func init() {
	RegisterCmd(signCmd{})
	RegisterCmd(signersCmd{})
	RegisterCmd(signedCmd{})
}
