package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Identity is the sender block rendered into every footer.
type Identity struct {
	SiteName string // e.g. "Acme Inc"
	Address  string // postal address line
}

type verifyData struct {
	UserName string
	URL      string
	Identity
}

type resetData struct {
	URL string
	Identity
}

var verifyTmpl = template.Must(template.New("verify").Parse(`<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4; color:#111;">
    <h2>Verify your email address</h2>
    <p>Hi {{.UserName}},</p>
    <p>Thanks for signing up for {{.SiteName}}. Please confirm your email
    address so we can activate your account.</p>
    <p>
      <a href="{{.URL}}" style="display:inline-block; padding:10px 14px; text-decoration:none; border-radius:6px; background:#111; color:#fff;">
        Verify email
      </a>
    </p>
    <p style="color:#555; font-size:12px;">
      If the button doesn't work, open this link:<br/>
      <a href="{{.URL}}">{{.URL}}</a>
    </p>
    <hr style="border:none; border-top:1px solid #ddd;"/>
    <p style="color:#888; font-size:11px;">
      {{.SiteName}}<br/>
      {{.Address}}
    </p>
  </body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4; color:#111;">
    <h2>Reset your password</h2>
    <p>Someone requested a password reset for your {{.SiteName}} account.
    If this was you, click the button below. Otherwise you can ignore this
    email.</p>
    <p>
      <a href="{{.URL}}" style="display:inline-block; padding:10px 14px; text-decoration:none; border-radius:6px; background:#111; color:#fff;">
        Reset password
      </a>
    </p>
    <p style="color:#555; font-size:12px;">
      If the button doesn't work, open this link:<br/>
      <a href="{{.URL}}">{{.URL}}</a>
    </p>
    <hr style="border:none; border-top:1px solid #ddd;"/>
    <p style="color:#888; font-size:11px;">
      {{.SiteName}}<br/>
      {{.Address}}
    </p>
  </body>
</html>`))

func renderVerifyEmail(id Identity, userName, url string) (string, error) {
	var buf bytes.Buffer
	err := verifyTmpl.Execute(&buf, verifyData{UserName: userName, URL: url, Identity: id})
	if err != nil {
		return "", fmt.Errorf("render verify template: %w", err)
	}
	return buf.String(), nil
}

func renderResetEmail(id Identity, url string) (string, error) {
	var buf bytes.Buffer
	err := resetTmpl.Execute(&buf, resetData{URL: url, Identity: id})
	if err != nil {
		return "", fmt.Errorf("render reset template: %w", err)
	}
	return buf.String(), nil
}
