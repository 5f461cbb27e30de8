package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const reminderQueue = "calendar:delivery_reminders"

// RedisCalendarScheduler books delivery reminders into a Redis sorted
// set scored by fire time. A worker pops due entries and delivers them.
type RedisCalendarScheduler struct {
	client   *redis.Client
	leadTime time.Duration
	logger   *zap.Logger
}

// NewRedisCalendarScheduler creates a new RedisCalendarScheduler
func NewRedisCalendarScheduler(client *redis.Client, leadTime time.Duration, logger *zap.Logger) *RedisCalendarScheduler {
	return &RedisCalendarScheduler{
		client:   client,
		leadTime: leadTime,
		logger:   logger,
	}
}

type reminderEntry struct {
	BrandID          uuid.UUID `json:"brand_id"`
	PONumber         string    `json:"po_number"`
	ExpectedDelivery time.Time `json:"expected_delivery"`
	RemindAt         time.Time `json:"remind_at"`
}

// ScheduleDeliveryReminder books a reminder ahead of the expected
// delivery date. Dates already inside the lead window fire immediately.
func (s *RedisCalendarScheduler) ScheduleDeliveryReminder(ctx context.Context, brandID uuid.UUID, poNumber string, expectedDelivery time.Time) error {
	remindAt := expectedDelivery.Add(-s.leadTime)
	if remindAt.Before(time.Now()) {
		remindAt = time.Now()
	}

	entry := reminderEntry{
		BrandID:          brandID,
		PONumber:         poNumber,
		ExpectedDelivery: expectedDelivery,
		RemindAt:         remindAt,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := s.client.ZAdd(ctx, reminderQueue, redis.Z{
		Score:  float64(remindAt.Unix()),
		Member: data,
	}).Err(); err != nil {
		s.logger.Warn("reminder scheduling failed",
			zap.String("po_number", poNumber), zap.Error(err))
		return fmt.Errorf("failed to schedule delivery reminder: %w", err)
	}
	return nil
}
