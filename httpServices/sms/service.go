package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"scrap-collect/httpServices/resilient"
)

type SendRequest struct {
	Sender  string `json:"sender"`
	To      string `json:"to"`
	Message string `json:"message"`
}

type SendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type SMSService struct {
	client   *resilient.Client
	senderID string
}

func NewSMSService(baseURL, apiKey, senderID string, opts resilient.Options) *SMSService {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &SMSService{
		client:   resilient.NewClient(baseURL, headers, opts),
		senderID: senderID,
	}
}

// Send delivers message to phone and returns the gateway's response
func (s *SMSService) Send(ctx context.Context, phone, message string) (*SendResponse, error) {
	body, err := s.client.PostJSON(ctx, "/messages", SendRequest{
		Sender:  s.senderID,
		To:      phone,
		Message: message,
	}, nil)
	if err != nil {
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode sms response: %w", err)
	}
	if resp.Status == "failed" || resp.Status == "rejected" {
		return &resp, fmt.Errorf("sms %s by gateway", resp.Status)
	}
	return &resp, nil
}
