package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/TWRT/task-reminder/internal/client"
	"github.com/TWRT/task-reminder/internal/client/postmark"
	"github.com/TWRT/task-reminder/internal/models"
)

type NotifyService struct {
	mail client.MailSender
	from string
	to   string
}

func NewNotifyService(mail client.MailSender, from, to string) *NotifyService {
	return &NotifyService{
		mail: mail,
		from: from,
		to:   to,
	}
}

// SendReminder emails the open task list to the configured receiver and
// returns the text body so the caller can log it as an outbound message.
// An empty list still sends, so the daily thread the user replies to
// stays alive.
func (s *NotifyService) SendReminder(tasks []models.Task) (string, error) {
	textBody := renderTextBody(tasks)

	email := postmark.Email{
		From:          s.from,
		To:            s.to,
		Subject:       fmt.Sprintf("Your tasks for %s", time.Now().Format("Monday, January 2")),
		TextBody:      textBody,
		HtmlBody:      renderHtmlBody(tasks),
		MessageStream: "outbound",
	}

	if _, err := s.mail.Send(email); err != nil {
		return "", fmt.Errorf("send reminder: %w", err)
	}

	return textBody, nil
}

func taskLine(t models.Task) string {
	line := fmt.Sprintf("[%d] %s (%s)", t.ID, t.Description, t.Status)
	if t.ScheduledFor != nil {
		line += fmt.Sprintf(", due %s", humanize.Time(*t.ScheduledFor))
	}
	if t.ScheduledForComment != "" {
		line += fmt.Sprintf(", %s", t.ScheduledForComment)
	}
	return line
}

func renderTextBody(tasks []models.Task) string {
	var b strings.Builder

	if len(tasks) == 0 {
		b.WriteString("No open tasks today. Reply to this email to add some.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "You have %d open task(s):\n\n", len(tasks))
	for _, t := range tasks {
		b.WriteString("- ")
		b.WriteString(taskLine(t))
		b.WriteString("\n")
		if t.Comment != "" {
			fmt.Fprintf(&b, "  %s\n", t.Comment)
		}
	}
	b.WriteString("\nReply to this email with your progress and I'll update the list.\n")

	return b.String()
}

func renderHtmlBody(tasks []models.Task) string {
	var b strings.Builder

	b.WriteString("<html><body>")
	if len(tasks) == 0 {
		b.WriteString("<p>No open tasks today. Reply to this email to add some.</p>")
	} else {
		fmt.Fprintf(&b, "<p>You have %d open task(s):</p><ul>", len(tasks))
		for _, t := range tasks {
			b.WriteString("<li>")
			b.WriteString(html.EscapeString(taskLine(t)))
			if t.Comment != "" {
				b.WriteString("<br><em>")
				b.WriteString(html.EscapeString(t.Comment))
				b.WriteString("</em>")
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul><p>Reply to this email with your progress and I'll update the list.</p>")
	}
	b.WriteString("</body></html>")

	return b.String()
}
