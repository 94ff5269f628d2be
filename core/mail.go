package core

import (
	"bytes"
	htmltemplate "html/template"
	"io/fs"
	"net/mail"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/pkg/errors"
)

var (
	templatesFS fs.FS

	textTemplates *texttemplate.Template
	htmlTemplates *htmltemplate.Template
	tmplOnce      sync.Once
)

// SetTemplatesFS registers the filesystem the email templates live in.
// Must be called before any EmailMessage is rendered.
func SetTemplatesFS(fsys fs.FS) { templatesFS = fsys }

func loadTemplates() {
	tmplOnce.Do(func() {
		if templatesFS == nil {
			return
		}
		textTemplates = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/email/*.txt"))
		htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/email/*.gohtml"))
	})
}

type (
	// EmailMessage is a renderable email. TemplateName refers to a pair of
	// templates (<name>.txt, <name>.gohtml); BodyStr is used as-is when no
	// template is set.
	EmailMessage struct {
		To           []mail.Address
		Subject      string
		BodyStr      string
		TemplateName string
		TemplateData interface{}

		textBody string
		htmlBody string
	}

	// EmailService sends email messages; services/email provides
	// implementations.
	EmailService interface {
		SendMessages(messages ...*EmailMessage) error
	}
)

// Render resolves the message bodies from its template (or BodyStr).
func (m *EmailMessage) Render() error {
	if m.TemplateName == "" {
		m.textBody = m.BodyStr
		return nil
	}
	loadTemplates()
	if textTemplates == nil {
		return errors.New("core: email templates not loaded")
	}

	var txt bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&txt, m.TemplateName+".txt", m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering %s", path.Join("templates/email", m.TemplateName+".txt"))
	}
	m.textBody = txt.String()

	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, m.TemplateName+".gohtml", m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering %s", path.Join("templates/email", m.TemplateName+".gohtml"))
	}
	m.htmlBody = html.String()
	return nil
}

func (m *EmailMessage) TextBody() string { return m.textBody }
func (m *EmailMessage) HTMLBody() string { return m.htmlBody }

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
