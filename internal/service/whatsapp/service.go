package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	client "github.com/MagetoJ/AviTrack/pkg/clients/whatsapp"
)

// ErrEmptyMessage is returned for outbound requests without a body or recipient.
var ErrEmptyMessage = errors.New("outbound message requires recipient and body")

// MessagingService sends operator notifications.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	client  client.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(c client.Client, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{client: c, timeout: 10 * time.Second, logger: logger}
}

// SendOutbound delivers the message, splitting bodies above the API limit
// into consecutive messages.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if req.To == "" || req.Message == "" {
		return ErrEmptyMessage
	}

	chunks := client.SplitText(req.Message, client.MaxTextLength)
	for i, chunk := range chunks {
		if err := s.send(ctx, req.To, chunk, req.PreviewURL); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(chunks), err)
		}
	}

	s.logger.Info("outbound message sent", zap.String("to", req.To), zap.Int("parts", len(chunks)))
	return nil
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}

// LogOnlyService stands in when WhatsApp credentials are not configured.
type LogOnlyService struct {
	logger *zap.Logger
}

// NewLogOnlyService returns a MessagingService that only logs.
func NewLogOnlyService(logger *zap.Logger) *LogOnlyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogOnlyService{logger: logger}
}

// SendOutbound logs the message instead of sending it.
func (s *LogOnlyService) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	s.logger.Info("whatsapp disabled, message not sent", zap.String("to", req.To), zap.Int("length", len(req.Message)))
	return nil
}
