package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

const (
	WelcomeSubject = "You're on the list! Welcome to Contract Checker"
	OTPSubject     = "New Device Verification"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type otpData struct {
	Code string
	Year int
}

// RenderWelcome returns the waitlist welcome email body.
func RenderWelcome() (string, error) {
	return render("welcome.html", nil)
}

// RenderOTP returns the device verification email body carrying code.
func RenderOTP(code string, year int) (string, error) {
	return render("otp.html", otpData{Code: code, Year: year})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
