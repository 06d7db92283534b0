package notify

import (
	"context"
	"log/slog"
)

const (
	// KindPasswordReset carries a password reset code to the account owner.
	KindPasswordReset = "password_reset"
	// KindOrderStatus announces an order status change to a counterparty.
	KindOrderStatus = "order_status"
	// KindInquiryAnswered tells a buyer their product question was answered.
	KindInquiryAnswered = "inquiry_answered"
	// KindChatMessage announces a new chat message to the recipient.
	KindChatMessage = "chat_message"
)

// Message describes an outbound delivery payload (email, SMS, push - whatever
// the deployment wires in).
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers messages to downstream delivery systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes deliveries to the logger.
// Push/email delivery is out of scope for this service; deployments swap in a
// real gateway behind the same interface.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
