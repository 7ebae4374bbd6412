package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier posts every stored incident to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyIncident posts a Markdown summary of the incident.
func (n *Notifier) NotifyIncident(ctx context.Context, _ string, incident domain.CandidateIncident) error {
	return n.send(ctx, FormatIncident(incident))
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.apiBase, "/"), n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatIncident renders the chat message for one incident.
func FormatIncident(incident domain.CandidateIncident) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(incident.Title))

	place := incident.State
	if incident.LocalArea != "" {
		place = incident.LocalArea + ", " + incident.State
	}
	fmt.Fprintf(&b, "%s · %s · %s\n", escapeMarkdown(place), incident.OccurredAt.Format("2 Jan 2006"), incident.IncidentType)
	fmt.Fprintf(&b, "Killed: %d  Injured: %d  Abducted: %d  Severity: %s\n",
		incident.Fatalities, incident.Injuries, incident.Abducted, incident.Severity)
	if incident.SourceURL != "" {
		b.WriteString(incident.SourceURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
