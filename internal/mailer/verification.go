package mailer

import (
	"bytes"
	"context"
	"html/template"
	"time"
)

const (
	VerificationSubject = "Verify your Hi-Way account"
	VerificationTTL     = 24 * time.Hour
)

var verificationTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Verify your Hi-Way account</title>
  </head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #2563eb; margin: 0;">Hi-Way</h1>
      <p style="color: #6b7280;">Your HR Recruitment Platform</p>
    </div>
    <div style="background-color: #f8fafc; border: 1px solid #e2e8f0; border-radius: 8px; padding: 30px;">
      <h2 style="margin-top: 0;">Welcome to Hi-Way!</h2>
      <p>Thank you for signing up. Please verify your email address to finish setting up your account.</p>
      <p style="text-align: center; margin: 30px 0;">
        <a href="{{.URL}}" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold;">Verify Email Address</a>
      </p>
      <p style="color: #6b7280; font-size: 14px;">If the button doesn't work, paste this link into your browser:<br>
        <a href="{{.URL}}" style="color: #2563eb; word-break: break-all;">{{.URL}}</a>
      </p>
    </div>
    <p style="color: #92400e; font-size: 14px;">This link expires in {{.Hours}} hours. If you didn't create a Hi-Way account, ignore this email.</p>
    <p style="text-align: center; color: #6b7280; font-size: 14px;">&copy; {{.Year}} Hi-Way. All rights reserved.</p>
  </body>
</html>
`))

type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

func VerificationBody(url string, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct {
		URL   string
		Hours int
		Year  int
	}{url, int(VerificationTTL.Hours()), now.Year()})
	return buf.String(), err
}

func SendVerification(ctx context.Context, s Sender, to, url string) error {
	body, err := VerificationBody(url, time.Now())
	if err != nil {
		return err
	}
	return s.Send(ctx, to, VerificationSubject, body)
}
