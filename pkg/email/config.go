package email

// Config holds email transport configuration.
// When PostmarkServerToken is empty the application falls back to DevSender,
// writing messages into DevDir instead of sending them.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// Production reports whether a real transport is configured.
func (c Config) Production() bool {
	return c.PostmarkServerToken != ""
}
