package email

import (
	"fmt"

	"github.com/keighl/postmark"
)

type postmarkSender struct {
	client *postmark.Client
	from   string
}

func newPostmarkSender(serverToken, from string) Sender {
	return &postmarkSender{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
	}
}

func (s *postmarkSender) Send(msg Message) error {
	email := postmark.Email{
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.PlainBody,
		HtmlBody: msg.HTMLBody,
	}

	response, err := s.client.SendEmail(email)
	if err != nil {
		return fmt.Errorf("postmark send failed: %w", err)
	}
	if response.ErrorCode != 0 {
		return fmt.Errorf("postmark rejected message: code %d: %s", response.ErrorCode, response.Message)
	}
	return nil
}
