package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const (
	welcomeSubject = "Welcome to Fintrack"
	resetSubject   = "Reset your Fintrack password"
)

var welcomeTpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Welcome to Fintrack</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background: #fff; padding: 20px; border-radius: 8px;">
    <h2 style="color: #2E86C1;">Welcome, {{.FirstName}}!</h2>
    <p>Your Fintrack account has been created. Your sign-in details:</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Password:</strong> {{.Password}}</p>
    <p>We recommend changing your password after your first login.</p>
  </div>
</body>
</html>
`))

var resetTpl = template.Must(template.New("reset").Funcs(template.FuncMap{"validity": validity}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Password reset</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background: #fff; padding: 20px; border-radius: 8px;">
    <p>Hello {{.FirstName}},</p>
    <p>We received a request to reset the password for {{.Email}}.</p>
    <p><a href="{{.ResetURL}}">Reset your password</a></p>
    {{if .ExpiresIn}}<p>The link expires in {{validity .ExpiresIn}}.</p>{{end}}
    <p>If you did not ask for a reset, ignore this email.</p>
  </div>
</body>
</html>
`))

// validity spells d out in whole hours or minutes.
func validity(d time.Duration) string {
	unit, n := "minute", int64(d/time.Minute)
	if d >= time.Hour && d%time.Hour == 0 {
		unit, n = "hour", int64(d/time.Hour)
	}
	if n < 1 {
		n = 1
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
