package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/checkout"
	apporder "github.com/storefront/backend/internal/application/order"
)

// LogNotifier writes order notifications to the application log. It stands in
// for a real channel (email, SMS, webhook) in deployments that have none
// configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notification")}
}

// NotifyOrderPlaced logs the placed order
func (n *LogNotifier) NotifyOrderPlaced(_ context.Context, notification checkout.PlacedOrderNotification) error {
	n.logger.Info("order placed notification",
		zap.String("order_number", notification.OrderNumber),
		zap.String("customer_id", notification.CustomerID),
		zap.String("total", notification.Total.String()),
		zap.Int("line_count", notification.LineCount),
	)
	return nil
}

// NotifyOrderStatusChanged logs the status change
func (n *LogNotifier) NotifyOrderStatusChanged(_ context.Context, notification apporder.StatusChangeNotification) error {
	n.logger.Info("order status changed notification",
		zap.String("order_number", notification.OrderNumber),
		zap.String("customer_id", notification.CustomerID),
		zap.String("from_status", notification.FromStatus),
		zap.String("to_status", notification.ToStatus),
	)
	return nil
}

// Ensure LogNotifier implements both notification contracts
var (
	_ checkout.Notifier       = (*LogNotifier)(nil)
	_ apporder.StatusNotifier = (*LogNotifier)(nil)
)
