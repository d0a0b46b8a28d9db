package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/storefront/pkg/email"
	"github.com/dmitrymomot/storefront/pkg/email/templates"
)

// EmailChannel renders the event template and sends it through an EmailSender.
type EmailChannel struct {
	sender   email.EmailSender
	storeURL string
	timeout  time.Duration
}

// NewEmailChannel creates the email channel. Links in bodies point at storeURL.
func NewEmailChannel(sender email.EmailSender, storeURL string, timeout time.Duration) *EmailChannel {
	if sender == nil {
		panic("notify: EmailSender is required")
	}
	return &EmailChannel{sender: sender, storeURL: storeURL, timeout: timeout}
}

func (c *EmailChannel) Name() ChannelName { return ChannelEmail }

func (c *EmailChannel) Applies(r Recipient) bool { return r.Email != "" }

func (c *EmailChannel) Deliver(ctx context.Context, event Event, r Recipient, p Payload) error {
	if r.Email == "" {
		return ErrNoEmailAddress
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tpl, err := emailTemplate(p, c.storeURL)
	if err != nil {
		return err
	}
	body, err := templates.Render(ctx, tpl)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	return c.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   r.Email,
		Subject:  p.subject(),
		BodyHTML: body,
		Tag:      string(event),
	})
}
