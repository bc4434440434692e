package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PhoneSender delivers phone verification codes
type PhoneSender interface {
	SendVerificationCode(ctx context.Context, phone, code, link string) error
}

// WhatsAppService posts text messages to a WhatsApp Cloud API compatible endpoint
type WhatsAppService struct {
	apiURL string
	token  string
	client *http.Client
	log    *zap.Logger
}

// NewWhatsAppService creates a new WhatsApp sender
func NewWhatsAppService(apiURL, token string, log *zap.Logger) *WhatsAppService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WhatsAppService{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

type whatsAppText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// VerificationMessage is the text sent with a phone code
func VerificationMessage(code, link string) string {
	msg := fmt.Sprintf("Tu código de verificación de %s es: %s", appName, code)
	if link != "" {
		msg += fmt.Sprintf("\nTambién puedes verificar tu número aquí: %s", link)
	}
	return msg
}

// SendVerificationCode sends the code; without an API URL the message is only logged
func (s *WhatsAppService) SendVerificationCode(ctx context.Context, phone, code, link string) error {
	body := VerificationMessage(code, link)
	if s.apiURL == "" {
		s.log.Info("whatsapp message not delivered, no api url configured", zap.String("to", phone))
		return nil
	}

	payload, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(phone, "+"),
		Type:             "text",
		Text:             whatsAppText{Body: body, PreviewURL: link != ""},
	})
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
