package auth

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
	"go.uber.org/zap"
)

// OTPVerifier sends and checks one-time codes for a phone number. Numbers must
// already be E.164-normalized.
type OTPVerifier interface {
	Send(ctx context.Context, phone string) error
	Check(ctx context.Context, phone, code string) (bool, error)
}

// TwilioVerifier implements OTPVerifier on the Twilio Verify API.
type TwilioVerifier struct {
	client     *twilio.RestClient
	serviceSID string
	logger     *zap.Logger
}

// NewTwilioVerifier creates a Twilio Verify client.
func NewTwilioVerifier(accountSID, authToken, serviceSID string, logger *zap.Logger) *TwilioVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioVerifier{client: client, serviceSID: serviceSID, logger: logger}
}

// Send starts an SMS verification for the phone number.
func (v *TwilioVerifier) Send(ctx context.Context, phone string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel("sms")
	if _, err := v.client.VerifyV2.CreateVerification(v.serviceSID, params); err != nil {
		v.logger.Error("twilio send failed", zap.Error(err))
		return fmt.Errorf("twilio send verification: %w", err)
	}
	return nil
}

// Check validates a code for the phone number. Returns false for denied or
// expired codes without an error.
func (v *TwilioVerifier) Check(ctx context.Context, phone, code string) (bool, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(phone)
	params.SetCode(code)
	result, err := v.client.VerifyV2.CreateVerificationCheck(v.serviceSID, params)
	if err != nil {
		v.logger.Error("twilio check failed", zap.Error(err))
		return false, fmt.Errorf("twilio check verification: %w", err)
	}
	return result.Status != nil && *result.Status == "approved", nil
}
