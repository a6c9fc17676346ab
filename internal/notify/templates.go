package notify

import (
	"fmt"
	"strings"
	"text/template"
)

type Template string

const (
	// TemplateSignatureReceived владельцу ссылки: документ подписан очередным подписантом.
	TemplateSignatureReceived Template = "signature_received"
	// TemplateSignatureComplete каждому подписанту: все стороны подписали.
	TemplateSignatureComplete Template = "signature_complete"
	// TemplateMagicLink зрителю: ссылка для входа без пароля.
	TemplateMagicLink Template = "magic_link"
)

// Payload данные для шаблонов.
type Payload struct {
	DocumentName  string
	RecipientName string
	SignerName    string
	SignerEmail   string
	Signers       []string
	URL           string
	At            string
}

var funcs = template.FuncMap{"join": strings.Join}

func mustParse(text string) *template.Template {
	return template.Must(template.New("").Funcs(funcs).Parse(text))
}

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var mailTemplates = map[Template]mailTemplate{
	TemplateSignatureReceived: {
		subject: mustParse(`{{.SignerName}} has signed your document: {{.DocumentName}}`),
		body: mustParse(`Hello {{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}},

{{.SignerName}} ({{.SignerEmail}}) has signed the document "{{.DocumentName}}".

Please sign the document to complete the signature workflow.

Document: {{.DocumentName}}
Signer: {{.SignerName}}
Signer Email: {{.SignerEmail}}
Signed At: {{.At}}
`),
	},
	TemplateSignatureComplete: {
		subject: mustParse(`All signatures complete: {{.DocumentName}}`),
		body: mustParse(`Hello {{.RecipientName}},

All parties have signed the document "{{.DocumentName}}". The signing process is now complete.

Document: {{.DocumentName}}
All Signers: {{join .Signers ", "}}
Completion Date: {{.At}}
`),
	},
	TemplateMagicLink: {
		subject: mustParse(`Your link to view {{.DocumentName}}`),
		body: mustParse(`Hello,

Use the link below to open "{{.DocumentName}}". It expires shortly and can be used once you are ready.

{{.URL}}
`),
	},
}

// Render возвращает тему и тело письма.
func Render(tmpl Template, p Payload) (string, string, error) {
	mt, ok := mailTemplates[tmpl]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", tmpl)
	}
	var subj, body strings.Builder
	if err := mt.subject.Execute(&subj, p); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", tmpl, err)
	}
	if err := mt.body.Execute(&body, p); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", tmpl, err)
	}
	return subj.String(), body.String(), nil
}

// SignedMessage текст Slack-сообщения о новой подписи.
func SignedMessage(documentName, signerName, signerEmail string) string {
	return fmt.Sprintf("Document signed: %s\nSigner: %s (%s)", documentName, signerName, signerEmail)
}

// CompletedMessage текст Slack-сообщения о завершении подписания.
func CompletedMessage(documentName string, signers []string) string {
	return fmt.Sprintf("All signatures complete: %s\nSigners: %s", documentName, strings.Join(signers, ", "))
}

// ViewedMessage текст Slack-сообщения о просмотре документа.
func ViewedMessage(documentName, viewerEmail string) string {
	return fmt.Sprintf("Someone opened your document: %s\nViewer: %s", documentName, viewerEmail)
}
