package finalize

import (
	"bytes"
	"clinic/src/booking"
	"clinic/src/lib"
	"clinic/src/models"
	"html/template"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<body>
<p>{{.Greeting}}</p>
<p>{{.Intro}}</p>
<table>
<tr><td>{{.NumberLabel}}</td><td><strong>{{.Number}}</strong></td></tr>
<tr><td>{{.ServiceLabel}}</td><td>{{.Service}}</td></tr>
<tr><td>{{.DateLabel}}</td><td>{{.Date}} {{.Time}}</td></tr>
</table>
</body>
</html>`))

type mailCopy struct {
	Subject      string
	Greeting     string
	Intro        string
	NumberLabel  string
	ServiceLabel string
	DateLabel    string
}

var mailCopies = map[booking.Locale]mailCopy{
	booking.LocaleNL: {
		Subject:      "Bevestiging van uw afspraak",
		Greeting:     "Beste",
		Intro:        "Bedankt voor uw boeking. Uw afspraak is bevestigd.",
		NumberLabel:  "Boekingsnummer",
		ServiceLabel: "Behandeling",
		DateLabel:    "Datum",
	},
	booking.LocaleEN: {
		Subject:      "Your appointment is confirmed",
		Greeting:     "Dear",
		Intro:        "Thank you for your booking. Your appointment is confirmed.",
		NumberLabel:  "Booking number",
		ServiceLabel: "Treatment",
		DateLabel:    "Date",
	},
}

// ConfirmationMail renders the customer confirmation in the booking's locale.
func ConfirmationMail(row *models.BookingIntent, from, fromName string) (*lib.SendMailInput, error) {
	locale, ok := booking.ParseLocale(row.Locale)
	if !ok {
		locale = booking.DefaultLocale
	}
	intent := row.ToIntent()
	c := mailCopies[locale]
	greeting := c.Greeting
	if row.CustomerName != "" {
		greeting += " " + row.CustomerName
	}
	greeting += ","

	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, map[string]string{
		"Lang":         string(locale),
		"Greeting":     greeting,
		"Intro":        c.Intro,
		"NumberLabel":  c.NumberLabel,
		"Number":       booking.BookingNumber(intent.ID),
		"ServiceLabel": c.ServiceLabel,
		"Service":      intent.ServiceType,
		"DateLabel":    c.DateLabel,
		"Date":         booking.FormatDate(intent.SelectedDate, locale),
		"Time":         booking.FormatTime(intent.SelectedTime),
	})
	if err != nil {
		return nil, err
	}
	return &lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{row.CustomerEmail},
		Subject:  c.Subject,
		Body:     buf.String(),
		Html:     true,
	}, nil
}
