package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const passwordResetSubject = "Your password reset code"

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <p>Hello {{.Username}},</p>
    <p>Use the code below to reset your password. It expires in {{.ValidFor}}.</p>
    <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
    <p>If you did not ask for a password reset you can ignore this email.</p>
  </body>
</html>`))

type passwordResetMail struct {
	Username string
	Code     string
	ValidFor string
}

func renderPasswordResetMail(username, code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := passwordResetTemplate.Execute(&buf, passwordResetMail{
		Username: username,
		Code:     code,
		ValidFor: humanizeDuration(ttl),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.Round(time.Second).String()
	}
}
