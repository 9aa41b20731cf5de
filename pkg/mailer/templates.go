package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
)

// PasswordResetSubject 重置密码邮件标题
const PasswordResetSubject = "Password Reset Request"

// PasswordResetData 重置密码邮件模板数据
type PasswordResetData struct {
	Username string
	Link     string
	OTP      string
}

// PasswordReset 渲染重置密码邮件
func PasswordReset(to string, data PasswordResetData) (Message, error) {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, "password_reset.txt.tmpl", data); err != nil {
		return Message{}, err
	}
	if err := htmlTemplates.ExecuteTemplate(&html, "password_reset.html.tmpl", data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: PasswordResetSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
