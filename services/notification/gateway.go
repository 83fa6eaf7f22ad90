package notification

import (
	"context"
	"fmt"
	"time"

	"scrap-collect/config"
	"scrap-collect/httpServices/resilient"
	"scrap-collect/httpServices/sms"
	"scrap-collect/logger"
)

// Gateway sends a one-way message to a seller. It reports delivery but never fails the caller.
type Gateway interface {
	Notify(ctx context.Context, phone, message string) bool
}

type smsSender interface {
	Send(ctx context.Context, phone, message string) (*sms.SendResponse, error)
}

// SMSGateway delivers notifications through the SMS API
type SMSGateway struct {
	sender smsSender
}

func NewSMSGateway(sender *sms.SMSService) *SMSGateway {
	return &SMSGateway{sender: sender}
}

func (g *SMSGateway) Notify(ctx context.Context, phone, message string) bool {
	if phone == "" {
		return false
	}
	resp, err := g.sender.Send(ctx, phone, message)
	if err != nil {
		logger.Warning(fmt.Sprintf("SMS to %s failed: %v", maskPhone(phone), err))
		return false
	}
	logger.Debug(fmt.Sprintf("SMS %s to %s %s", resp.MessageID, maskPhone(phone), resp.Status))
	return true
}

// LogGateway only writes the message to the application log
type LogGateway struct{}

func (LogGateway) Notify(ctx context.Context, phone, message string) bool {
	if phone == "" {
		return false
	}
	logger.Info(fmt.Sprintf("📱 SMS to %s: %s", maskPhone(phone), message))
	return true
}

// NewFromConfig picks the SMS-backed gateway or the log gateway
func NewFromConfig(cfg config.SMSConfig) (Gateway, error) {
	switch cfg.Mode {
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("SMS_BASE_URL is required when SMS_MODE=http")
		}
		opts := resilient.DefaultOptions(10 * time.Second)
		return NewSMSGateway(sms.NewSMSService(cfg.BaseURL, cfg.APIKey, cfg.SenderID, opts)), nil
	case "", "log":
		return LogGateway{}, nil
	default:
		return nil, fmt.Errorf("unsupported SMS_MODE %q", cfg.Mode)
	}
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "******" + phone[len(phone)-4:]
}
