package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// emailTemplate returns the email body component for a payload.
func emailTemplate(p Payload, storeURL string) (templ.Component, error) {
	msg := p.wall(storeURL)
	switch v := p.(type) {
	case NewOrderPayload:
		return layout(msg.Title, msg.Link, newOrderBody(v)), nil
	case ReturnRequestPayload:
		return layout(msg.Title, msg.Link, returnRequestBody(v)), nil
	case ProjectRequestPayload:
		return layout(msg.Title, msg.Link, projectRequestBody(v)), nil
	case ReturnHandoverPayload:
		return layout(msg.Title, msg.Link, returnHandoverBody(v)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, p)
	}
}

func layout(title, link string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head>`+
				`<body style="font-family:sans-serif;color:#222"><h2>%s</h2>`,
			templ.EscapeString(title), templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<p><a href="%s">Open in admin</a></p></body></html>`, templ.EscapeString(link))
		return err
	})
}

// rows renders label/value pairs as a table; empty values are skipped.
func rows(w io.Writer, pairs ...string) error {
	var sb strings.Builder
	sb.WriteString(`<table cellpadding="4">`)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		fmt.Fprintf(&sb, `<tr><th align="left">%s</th><td>%s</td></tr>`,
			templ.EscapeString(pairs[i]), templ.EscapeString(pairs[i+1]))
	}
	sb.WriteString(`</table>`)
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func newOrderBody(p NewOrderPayload) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := rows(w,
			"Order", p.OrderNumber,
			"Customer", p.CustomerName,
			"Email", p.CustomerEmail,
			"Phone", p.CustomerPhone,
			"Total", FormatMoney(p.Total, p.Currency),
			"Placed", formatTime(p.PlacedAt),
		); err != nil {
			return err
		}
		if len(p.Items) == 0 {
			return nil
		}
		var sb strings.Builder
		sb.WriteString(`<h3>Items</h3><ul>`)
		for _, it := range p.Items {
			fmt.Fprintf(&sb, `<li>%s &times; %d, %s</li>`,
				templ.EscapeString(it.Name), it.Quantity, templ.EscapeString(FormatMoney(it.Price, p.Currency)))
		}
		sb.WriteString(`</ul>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

func returnRequestBody(p ReturnRequestPayload) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return rows(w,
			"Request", p.RequestNumber,
			"Order", p.OrderNumber,
			"Customer", p.CustomerName,
			"Reason", p.Reason,
			"Condition", p.Condition,
			"Description", p.Description,
			"Images", fmt.Sprint(p.ImageCount),
			"Requested", formatTime(p.RequestedAt),
		)
	})
}

func projectRequestBody(p ProjectRequestPayload) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return rows(w,
			"Name", p.Name,
			"Email", p.Email,
			"Phone", p.Phone,
			"Service", p.Service,
			"Budget", p.Budget,
			"Message", p.Message,
			"Submitted", formatTime(p.SubmittedAt),
		)
	})
}

func returnHandoverBody(p ReturnHandoverPayload) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return rows(w,
			"Request", p.RequestNumber,
			"Order", p.OrderNumber,
			"Customer", p.CustomerName,
			"Pickup date", formatTime(p.PickupDate),
			"Handed over", formatTime(p.HandedOverAt),
		)
	})
}
