package email

import (
	"fmt"

	"plinth/core/config"
)

// Message is a single outbound email.
type Message struct {
	To        string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers email through the configured provider.
type Sender interface {
	Send(msg Message) error
}

// NewSender builds the provider selected by config.EmailProvider. An
// unknown or unconfigured provider is an error so the caller can decide to
// continue without email.
func NewSender(cfg *config.Config) (Sender, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		if cfg.EmailAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider requires EMAIL_API_KEY")
		}
		return newSendGridSender(cfg.EmailAPIKey, cfg.EmailFromAddress), nil
	case "postmark":
		if cfg.EmailAPIKey == "" {
			return nil, fmt.Errorf("postmark provider requires EMAIL_API_KEY")
		}
		return newPostmarkSender(cfg.EmailAPIKey, cfg.EmailFromAddress), nil
	case "none", "":
		return nil, fmt.Errorf("email provider disabled")
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}
