package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var mfaCodeTmpl = template.Must(template.New("mfa_code").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Your verification code</h2>
  <p>Hello {{.Name}},</p>
  <p>Use this code to finish signing in:</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
  <p>The code is valid for a few minutes. If you did not try to sign in,
  change your password immediately.</p>
</body>
</html>
`))

var tempPasswordTmpl = template.Must(template.New("temp_password").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Temporary password</h2>
  <p>Hello {{.Name}},</p>
  <p>A password reset was requested for your account. Your temporary password is:</p>
  <p style="font-size: 20px; font-weight: bold;">{{.Password}}</p>
  <p>Sign in with it and change it right away. If you did not request a reset,
  contact your administrator.</p>
</body>
</html>
`))

var budgetChangeTmpl = template.Must(template.New("budget_change").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Budget settings changed for {{.EventName}}</h2>
  <p>Hello {{.Name}},</p>
  <p>{{.ChangedBy}} updated the budget governance settings on your event:</p>
  <ul>
  {{range .Changes}}<li><strong>{{.Field}}</strong>: {{.From}} &rarr; {{.To}}</li>
  {{end}}</ul>
  <p>The full audit trail is available in the event history export.</p>
</body>
</html>
`))

// BudgetChangeLine is one governed-field change rendered in the notification.
type BudgetChangeLine struct {
	Field string
	From  string
	To    string
}

// RenderMfaCode renders the MFA challenge email body.
func RenderMfaCode(name, code string) (string, error) {
	return render(mfaCodeTmpl, struct {
		Name string
		Code string
	}{name, code})
}

// RenderTempPassword renders the forgot-password email body.
func RenderTempPassword(name, tempPassword string) (string, error) {
	return render(tempPasswordTmpl, struct {
		Name     string
		Password string
	}{name, tempPassword})
}

// RenderBudgetChange renders the governed-field change notification body.
func RenderBudgetChange(name, eventName, changedBy string, changes []BudgetChangeLine) (string, error) {
	return render(budgetChangeTmpl, struct {
		Name      string
		EventName string
		ChangedBy string
		Changes   []BudgetChangeLine
	}{name, eventName, changedBy, changes})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", t.Name(), err)
	}
	return buf.String(), nil
}
