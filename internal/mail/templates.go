package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// PasswordResetData is the input of the password reset email
type PasswordResetData struct {
	Username string
	ResetURL string
	SiteName string
}

const passwordResetSubject = "Password reset on {{.SiteName}}"

const passwordResetText = `Hello {{.Username}},

You're receiving this email because you requested a password reset for your account at {{.SiteName}}.

Please go to the following page and choose a new password:

{{.ResetURL}}

If you didn't request this, you can ignore this email.

The {{.SiteName}} team
`

const passwordResetHTML = `<!DOCTYPE html>
<html>
<body>
<p>Hello {{.Username}},</p>
<p>You're receiving this email because you requested a password reset for your account at {{.SiteName}}.</p>
<p><a href="{{.ResetURL}}">Choose a new password</a></p>
<p>If you didn't request this, you can ignore this email.</p>
<p>The {{.SiteName}} team</p>
</body>
</html>
`

var (
	passwordResetSubjectTmpl = texttemplate.Must(texttemplate.New("reset-subject").Parse(passwordResetSubject))
	passwordResetTextTmpl    = texttemplate.Must(texttemplate.New("reset-text").Parse(passwordResetText))
	passwordResetHTMLTmpl    = htmltemplate.Must(htmltemplate.New("reset-html").Parse(passwordResetHTML))
)

// PasswordResetMessage renders the password reset email addressed to to
func PasswordResetMessage(to string, data PasswordResetData) (Message, error) {
	var subject, text, html bytes.Buffer

	if err := passwordResetSubjectTmpl.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("execute subject template: %w", err)
	}
	if err := passwordResetTextTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("execute text template: %w", err)
	}
	if err := passwordResetHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("execute HTML template: %w", err)
	}

	return Message{
		To:      to,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
