package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// message is a rendered email.
type message struct {
	Subject string
	Text    string
	HTML    string
}

const textLayout = `Hello{{with .RecipientName}} {{.}}{{end}},

{{template "body" .}}

Thank you for shopping with us.
`

const htmlLayout = `<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333;">
<p>Hello{{with .RecipientName}} {{.}}{{end}},</p>
{{template "body" .}}
<p>Thank you for shopping with us.</p>
</body></html>
`

type mailTemplate struct {
	subject string
	text    string
	html    string
}

var mailTemplates = map[Kind]mailTemplate{
	KindOrderConfirmation: {
		subject: "Order Confirmation - %s",
		text:    `We received your order {{.Order.OrderNumber}}. Total: {{.Order.TotalAmount.StringFixed 2}}.`,
		html:    `<p>We received your order <strong>{{.Order.OrderNumber}}</strong>.</p><p>Total: {{.Order.TotalAmount.StringFixed 2}}</p>`,
	},
	KindOrderShipped: {
		subject: "Your Order Has Shipped - %s",
		text:    `Your order {{.Order.OrderNumber}} is on its way.{{with .Order.TrackingNumber}} Tracking number: {{.}}.{{end}}`,
		html:    `<p>Your order <strong>{{.Order.OrderNumber}}</strong> is on its way.</p>{{with .Order.TrackingNumber}}<p>Tracking number: {{.}}</p>{{end}}`,
	},
	KindOrderDelivered: {
		subject: "Your Order Has Been Delivered - %s",
		text:    `Your order {{.Order.OrderNumber}} has been delivered.`,
		html:    `<p>Your order <strong>{{.Order.OrderNumber}}</strong> has been delivered.</p>`,
	},
	KindOrderCancelled: {
		subject: "Order Cancelled - %s",
		text:    `Your order {{.Order.OrderNumber}} has been cancelled.`,
		html:    `<p>Your order <strong>{{.Order.OrderNumber}}</strong> has been cancelled.</p>`,
	},
	KindAppointmentConfirmed: {
		subject: "Appointment Confirmed - %s",
		text:    `Your {{.Appointment.AppointmentType}} appointment on {{.Appointment.Date}} at {{.Appointment.Time}} is confirmed.`,
		html:    `<p>Your <strong>{{.Appointment.AppointmentType}}</strong> appointment on {{.Appointment.Date}} at {{.Appointment.Time}} is confirmed.</p>`,
	},
	KindAppointmentCompleted: {
		subject: "Appointment Completed - %s",
		text:    `Your {{.Appointment.AppointmentType}} appointment on {{.Appointment.Date}} is complete.`,
		html:    `<p>Your <strong>{{.Appointment.AppointmentType}}</strong> appointment on {{.Appointment.Date}} is complete.</p>`,
	},
	KindAppointmentCancelled: {
		subject: "Appointment Cancelled - %s",
		text:    `Your {{.Appointment.AppointmentType}} appointment on {{.Appointment.Date}} at {{.Appointment.Time}} has been cancelled.`,
		html:    `<p>Your <strong>{{.Appointment.AppointmentType}}</strong> appointment on {{.Appointment.Date}} at {{.Appointment.Time}} has been cancelled.</p>`,
	},
}

// render builds the email for ev.
func render(ev Event) (message, error) {
	tmpl, ok := mailTemplates[ev.Kind]
	if !ok {
		return message{}, fmt.Errorf("no mail template for %q", ev.Kind)
	}

	var subjectArg string
	switch {
	case ev.Order != nil:
		subjectArg = ev.Order.OrderNumber
	case ev.Appointment != nil:
		subjectArg = strings.ReplaceAll(string(ev.Appointment.AppointmentType), "_", " ")
	default:
		return message{}, fmt.Errorf("event %q has no subject", ev.Kind)
	}

	text, err := texttemplate.New("layout").Parse(textLayout)
	if err == nil {
		_, err = text.New("body").Parse(tmpl.text)
	}
	if err != nil {
		return message{}, fmt.Errorf("failed to parse text template: %w", err)
	}

	html, err := htmltemplate.New("layout").Parse(htmlLayout)
	if err == nil {
		_, err = html.New("body").Parse(tmpl.html)
	}
	if err != nil {
		return message{}, fmt.Errorf("failed to parse html template: %w", err)
	}

	var textBuf, htmlBuf bytes.Buffer
	if err := text.ExecuteTemplate(&textBuf, "layout", ev); err != nil {
		return message{}, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := html.ExecuteTemplate(&htmlBuf, "layout", ev); err != nil {
		return message{}, fmt.Errorf("failed to render html body: %w", err)
	}

	return message{
		Subject: fmt.Sprintf(tmpl.subject, subjectArg),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}
