package service

import (
	"context"
	"fmt"

	"github.com/dtroode/quicklogin/internal/model"
)

const smsSendPath = "/auth/sms/send"

var _ model.SMSSender = (*SMS)(nil)

type smsSendRequest struct {
	Phone string `json:"phone"`
}

// SMS requests verification codes from the backend.
type SMS struct {
	api model.Requester
}

// NewSMS creates an SMS sender.
func NewSMS(api model.Requester) *SMS {
	return &SMS{api: api}
}

// SendSMSCode asks the backend to text a verification code to phone.
func (s *SMS) SendSMSCode(ctx context.Context, phone string) error {
	if err := s.api.Post(ctx, smsSendPath, smsSendRequest{Phone: phone}, nil); err != nil {
		return fmt.Errorf("failed to send sms code: %w", err)
	}
	return nil
}
