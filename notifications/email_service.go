package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anjiri1684/educonnect/models"
	"github.com/rs/zerolog/log"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers one transactional email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error
}

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	BaseURL     string
	Client      *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewBrevoService returns nil when the sender is not fully configured.
func NewBrevoService(apiKey, senderEmail, senderName string) *BrevoService {
	if apiKey == "" || senderEmail == "" {
		log.Warn().Msg("email service not configured, tutor notifications are disabled")
		return nil
	}
	if senderName == "" {
		senderName = "EduConnect"
	}
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		BaseURL:     defaultBrevoURL,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}
	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

var decisionTemplate = template.Must(template.New("decision").Parse(
	`<p>Hello,</p>
{{if eq .To "approved"}}<p>Your session <strong>{{.Title}}</strong> has been approved{{if gt .Fee 0.0}} with a registration fee of ${{printf "%.2f" .Fee}}{{end}}. Students can now book it.</p>
{{else if eq .To "rejected"}}<p>Your session <strong>{{.Title}}</strong> was not approved.</p>
<p>Reason: {{.Reason}}</p>{{if .Feedback}}<p>Feedback: {{.Feedback}}</p>{{end}}
<p>You can edit the session and resubmit it for review.</p>
{{end}}<p>The EduConnect team</p>`))

// EmailNotifier mails tutors when an admin decides on their session.
type EmailNotifier struct {
	mailer  Mailer
	timeout time.Duration
	async   bool
}

func NewEmailNotifier(mailer Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, timeout: 15 * time.Second, async: true}
}

// SessionChanged ignores transitions back to pending. Delivery runs in the
// background so the admin's request never waits on the mail provider.
func (n *EmailNotifier) SessionChanged(_ context.Context, ev models.SessionEvent) {
	if n == nil || n.mailer == nil {
		return
	}
	if ev.To != models.SessionApproved && ev.To != models.SessionRejected {
		return
	}
	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.deliver(ctx, ev); err != nil {
			log.Error().Err(err).Str("session_id", ev.SessionID).Str("to", ev.TutorEmail).Msg("failed to send session decision email")
			return
		}
		log.Info().Str("session_id", ev.SessionID).Str("to", ev.TutorEmail).Msg("session decision email sent")
	}
	if n.async {
		go send()
		return
	}
	send()
}

func (n *EmailNotifier) deliver(ctx context.Context, ev models.SessionEvent) error {
	var body bytes.Buffer
	if err := decisionTemplate.Execute(&body, ev); err != nil {
		return err
	}
	subject := fmt.Sprintf("Your session %q was %s", ev.Title, ev.To)
	return n.mailer.Send(ctx, ev.TutorEmail, "", subject, body.String())
}
