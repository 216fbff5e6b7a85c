package jobs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/notifications"
	"github.com/rs/zerolog/log"
)

var reminderTemplate = template.Must(template.New("reminder").Parse(
	`<h1>Class Reminder</h1>
<p>Hi {{if .Student}}{{.Student}}{{else}}there{{end}},</p>
<p>Your session <b>{{.Title}}</b>{{if .Tutor}} with {{.Tutor}}{{end}} starts on {{.Start}}.</p>
<p>The EduConnect team</p>`))

type reminder struct {
	Student string
	Title   string
	Tutor   string
	Start   string
}

func (r reminder) render() (string, error) {
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, r); err != nil {
		return "", err
	}
	return body.String(), nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02", "01/02/2006"}

func parseClassDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClassReminders mails every booked student of an approved session whose
// class starts on the next calendar day.
func ClassReminders(store database.Store, mailer notifications.Mailer, now func() time.Time) func(ctx context.Context) {
	return func(ctx context.Context) {
		if mailer == nil {
			return
		}
		tomorrow := now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

		var sessions []models.Session
		err := store.Find(ctx, database.CollectionSessions, database.Filter{"status": models.SessionApproved}, database.FindOptions{}, &sessions)
		if err != nil {
			log.Error().Err(err).Msg("class reminders: list sessions")
			return
		}

		for _, s := range sessions {
			start, ok := parseClassDate(s.ClassStartDate)
			if !ok || start.UTC().Format("2006-01-02") != tomorrow {
				continue
			}
			var bookings []models.BookedSession
			err := store.Find(ctx, database.CollectionBookedSessions, database.Filter{"sessionId": s.ID}, database.FindOptions{}, &bookings)
			if err != nil {
				log.Error().Err(err).Str("session_id", s.ID).Msg("class reminders: list bookings")
				continue
			}
			subject := fmt.Sprintf("Reminder: %s starts tomorrow", s.Title)
			for _, b := range bookings {
				body, err := reminder{
					Student: b.StudentName,
					Title:   s.Title,
					Tutor:   s.TutorName,
					Start:   start.Format("Monday, January 2"),
				}.render()
				if err != nil {
					log.Error().Err(err).Str("session_id", s.ID).Msg("class reminders: render")
					break
				}
				if err := mailer.Send(ctx, b.StudentEmail, b.StudentName, subject, body); err != nil {
					log.Error().Err(err).Str("to", b.StudentEmail).Msg("class reminders: send")
				}
			}
			log.Info().Str("session_id", s.ID).Int("students", len(bookings)).Msg("class reminders sent")
		}
	}
}
