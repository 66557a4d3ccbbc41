package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"uniscout-backend/internal/contact"
)

const contactNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>A new contact request was submitted on UniScout.</p>
  <ul>
    <li>Request type: {{.RequestType}}</li>
    <li>University: {{.UniversityName}}</li>
    <li>Representative: {{.Name}}</li>
    <li>Country: {{.Country}}</li>
    <li>Phone: {{.PhoneNumber}}</li>
    <li>E-mail: {{.Email}}</li>
    <li>Received: {{.CreatedAt}}</li>
    <li>Reference: {{.ID}}</li>
  </ul>
  <p>Message:</p>
  <blockquote>{{.Message}}</blockquote>
  {{- if .Attachments}}
  <p>Attachments:</p>
  <ul>
    {{- range .Attachments}}
    <li>{{.Name}} ({{.MimeType}}, {{.Size}} bytes)</li>
    {{- end}}
  </ul>
  {{- end}}
</body>
</html>`

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(contactNotificationTemplate))

type contactNotificationData struct {
	ID             string
	RequestType    string
	UniversityName string
	Name           string
	Country        string
	PhoneNumber    string
	Email          string
	Message        string
	CreatedAt      string
	Attachments    []contact.StoredAttachment
}

func buildContactNotificationHTML(item contact.Submission) (string, error) {
	data := contactNotificationData{
		ID:             item.ID,
		RequestType:    item.RequestType.Display(),
		UniversityName: item.UniversityName,
		Name:           item.RepresentativeName,
		Country:        item.Country,
		PhoneNumber:    item.PhoneNumber,
		Email:          item.Email,
		Message:        item.Message,
		CreatedAt:      item.CreatedAt.Format(time.RFC1123),
		Attachments:    item.Attachments,
	}
	var buf bytes.Buffer
	if err := contactNotificationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ContactMailer forwards new contact requests to the team inbox.
type ContactMailer struct {
	client *BrevoClient
	to     string
}

// NewContactMailer returns nil when e-mail delivery is not configured.
func NewContactMailer(client *BrevoClient, to string) *ContactMailer {
	if client == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	return &ContactMailer{client: client, to: strings.TrimSpace(to)}
}

func (m *ContactMailer) SendContactNotification(ctx context.Context, item contact.Submission) (string, error) {
	if m == nil {
		return "", errors.New("contact mailer is nil")
	}
	subject := fmt.Sprintf("New %s request - %s", item.RequestType.Display(), item.UniversityName)
	htmlBody, err := buildContactNotificationHTML(item)
	if err != nil {
		return "", err
	}
	return m.client.sendHTML(ctx, m.to, "UniScout team", subject, htmlBody)
}
