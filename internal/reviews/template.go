package reviews

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"table-planner/internal/planner/models"
)

// ============================================================
// Review e-mail template
// ============================================================

const reviewSubject = "How was your visit?"

type Email struct {
	ToName  string
	ToEmail string
	Subject string
	Plain   string
	HTML    string
}

var htmlBody = template.Must(template.New("review").Parse(`<p>Hello {{.Name}},</p>
<p>We hope you enjoyed your visit on {{.Date}}.</p>
<p>We would love to hear about your experience. Please leave your review here:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Your feedback helps us keep improving.</p>
<p>Kind regards,<br>The Restaurant Team</p>
`))

// ReviewLink: ссылка на страницу отзыва для бронирования.
func ReviewLink(baseURL, reservationID string) string {
	return strings.TrimRight(baseURL, "/") + "/review/" + reservationID
}

// Compose собирает письмо с просьбой оставить отзыв.
func Compose(r models.Reservation, baseURL string, loc *time.Location) (Email, error) {
	link := ReviewLink(baseURL, r.ID)
	date := r.Date.In(loc).Format("02/01/2006")

	plain := fmt.Sprintf(`Hello %s,

We hope you enjoyed your visit on %s.

We would love to hear about your experience. Please leave your review here:

%s

Your feedback helps us keep improving.

Kind regards,
The Restaurant Team
`, r.CustomerName, date, link)

	var buf bytes.Buffer
	err := htmlBody.Execute(&buf, struct {
		Name, Date, Link string
	}{r.CustomerName, date, link})
	if err != nil {
		return Email{}, fmt.Errorf("render review email: %w", err)
	}

	return Email{
		ToName:  r.CustomerName,
		ToEmail: r.CustomerEmail,
		Subject: reviewSubject,
		Plain:   plain,
		HTML:    buf.String(),
	}, nil
}
