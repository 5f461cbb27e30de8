// Package notification delivers workflow notifications over Redis.
// Consumers (mail sender, in-app inbox) subscribe to the channels and
// render the payloads; this side only publishes.
package notification

import (
	"context"
	"encoding/json"
	"time"

	appprocurement "github.com/commercehub/backoffice/internal/application/procurement"
	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	channelApprovals = "notifications:approvals"
	channelAlerts    = "notifications:alerts"
)

// RedisNotifier publishes workflow notifications to Redis channels
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a new RedisNotifier
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

type approvalMessage struct {
	Kind                  string          `json:"kind"`
	RecipientID           uuid.UUID       `json:"recipient_id"`
	PONumber              string          `json:"po_number"`
	Status                string          `json:"status,omitempty"`
	FulfillmentPercentage decimal.Decimal `json:"fulfillment_percentage,omitempty"`
	Title                 string          `json:"title,omitempty"`
	Message               string          `json:"message,omitempty"`
	Priority              string          `json:"priority,omitempty"`
	ActionURL             string          `json:"action_url,omitempty"`
	Reason                string          `json:"reason,omitempty"`
	SentAt                time.Time       `json:"sent_at"`
}

type lowStockMessage struct {
	Kind    string                    `json:"kind"`
	BrandID uuid.UUID                 `json:"brand_id"`
	Alerts  []inventory.LowStockAlert `json:"alerts"`
	SentAt  time.Time                 `json:"sent_at"`
}

type backorderMessage struct {
	Kind        string          `json:"kind"`
	BrandID     uuid.UUID       `json:"brand_id"`
	BackorderID uuid.UUID       `json:"backorder_id"`
	PONumber    string          `json:"po_number"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
	SentAt      time.Time       `json:"sent_at"`
}

// NotifyApprovalComplete tells the requester their order was finalized
func (n *RedisNotifier) NotifyApprovalComplete(ctx context.Context, notice appprocurement.ApprovalNotice) error {
	return n.publish(ctx, channelApprovals, approvalMessage{
		Kind:                  "approval_complete",
		RecipientID:           notice.RequesterID,
		PONumber:              notice.PONumber,
		Status:                notice.Status,
		FulfillmentPercentage: notice.FulfillmentPercentage,
		Title:                 notice.Title,
		Message:               notice.Message,
		Priority:              notice.Priority,
		ActionURL:             notice.ActionURL,
		SentAt:                time.Now(),
	})
}

// NotifyRejection tells the requester their order was rejected
func (n *RedisNotifier) NotifyRejection(ctx context.Context, requesterID uuid.UUID, poNumber, reason string) error {
	return n.publish(ctx, channelApprovals, approvalMessage{
		Kind:        "rejection",
		RecipientID: requesterID,
		PONumber:    poNumber,
		Reason:      reason,
		SentAt:      time.Now(),
	})
}

// NotifyLowStock alerts procurement staff about SKUs below threshold
func (n *RedisNotifier) NotifyLowStock(ctx context.Context, brandID uuid.UUID, alerts []inventory.LowStockAlert) error {
	return n.publish(ctx, channelAlerts, lowStockMessage{
		Kind:    "low_stock",
		BrandID: brandID,
		Alerts:  alerts,
		SentAt:  time.Now(),
	})
}

// NotifyBackorderCreated alerts procurement staff that a backorder was
// opened for an under-fulfilled line
func (n *RedisNotifier) NotifyBackorderCreated(ctx context.Context, brandID, backorderID uuid.UUID, poNumber, sku string, quantity decimal.Decimal) error {
	return n.publish(ctx, channelAlerts, backorderMessage{
		Kind:        "backorder_created",
		BrandID:     brandID,
		BackorderID: backorderID,
		PONumber:    poNumber,
		SKU:         sku,
		Quantity:    quantity,
		SentAt:      time.Now(),
	})
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("channel", channel), zap.Error(err))
		return err
	}
	return nil
}
