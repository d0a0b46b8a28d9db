package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params email.SendEmailParams
		errMsg string
	}{
		{
			name:   "valid",
			params: email.SendEmailParams{SendTo: "admin@shop.test", Subject: "New order", BodyHTML: "<p>hi</p>"},
		},
		{
			name:   "missing recipient",
			params: email.SendEmailParams{SendTo: "  ", Subject: "s", BodyHTML: "b"},
			errMsg: "SendTo is required",
		},
		{
			name:   "malformed recipient",
			params: email.SendEmailParams{SendTo: "not-an-email", Subject: "s", BodyHTML: "b"},
			errMsg: "valid email address",
		},
		{
			name:   "missing subject",
			params: email.SendEmailParams{SendTo: "a@b.io", BodyHTML: "b"},
			errMsg: "Subject is required",
		},
		{
			name:   "missing body",
			params: email.SendEmailParams{SendTo: "a@b.io", Subject: "s"},
			errMsg: "BodyHTML is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewPostmarkClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := email.NewPostmarkClient(email.Config{
		PostmarkAccountToken: "acc",
		SenderEmail:          "noreply@shop.test",
		SupportEmail:         "support@shop.test",
	})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewPostmarkClient(email.Config{
		PostmarkServerToken:  "srv",
		PostmarkAccountToken: "acc",
		SenderEmail:          "nope",
		SupportEmail:         "support@shop.test",
	})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	s, err := email.NewSender(email.Config{SenderEmail: "a@shop.test", SupportEmail: "b@shop.test", DevDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &email.DevSender{}, s)

	s, err = email.NewSender(email.Config{
		PostmarkServerToken:  "srv",
		PostmarkAccountToken: "acc",
		SenderEmail:          "a@shop.test",
		SupportEmail:         "b@shop.test",
	})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "admin@shop.test",
		Subject:  "New order #1001",
		BodyHTML: "<h1>Order</h1>",
		Tag:      "newOrder",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var jsonFile string
	for _, e := range entries {
		assert.True(t, strings.Contains(e.Name(), "neworder"))
		if strings.HasSuffix(e.Name(), ".json") {
			jsonFile = e.Name()
		}
	}
	require.NotEmpty(t, jsonFile)

	raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "admin@shop.test", meta["send_to"])
	assert.Equal(t, "newOrder", meta["tag"])
}

func TestDevSender_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	err := email.NewDevSender(t.TempDir()).SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}
