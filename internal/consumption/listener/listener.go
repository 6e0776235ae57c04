package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption"
	"github.com/fekuna/omnipos-inventory-service/internal/consumption/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	eventOrderCompleted = "OrderCompleted"
	maxEventAttempts    = 5
	maxEventBackoff     = 30 * time.Second
)

// MessageSource is satisfied by *broker.KafkaConsumer.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Guard is satisfied by *cache.RedisClient.
type Guard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Options struct {
	DedupTTL time.Duration
	// Attempts bounds how often a line is tried when it hits a lock conflict.
	Attempts int
	Backoff  time.Duration
	// EventBackoff is the base delay before a failed event is processed again.
	EventBackoff time.Duration
}

type OrderListener struct {
	source MessageSource
	guard  Guard
	uc     consumption.UseCase
	opts   Options
	logger logger.ZapLogger
}

func NewOrderListener(source MessageSource, guard Guard, uc consumption.UseCase, opts Options, logger logger.ZapLogger) *OrderListener {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	if opts.EventBackoff <= 0 {
		opts.EventBackoff = time.Second
	}
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}
	return &OrderListener{
		source: source,
		guard:  guard,
		uc:     uc,
		opts:   opts,
		logger: logger,
	}
}

type OrderCompletedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID        string             `json:"id"`
	VenueID   string             `json:"venue_id"`
	CashierID string             `json:"cashier_id"`
	Items     []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	LineID       string          `json:"line_id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	SkipOptional []string        `json:"skip_optional"`
}

// Start consumes until ctx is cancelled. A message is committed once every line has been
// handled. Lock conflicts retry the message until it goes through, since committing would
// lose the sale. Other system faults, an unreachable dedup guard included, retry it a
// bounded number of times.
func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting order consumption listener")
	for {
		msg, err := l.source.FetchMessage(ctx)
		if err != nil {
			// Don't log context canceled error as error
			if ctx.Err() != nil {
				l.logger.Info("Stopping order consumption listener")
				return
			}
			l.logger.Error("Failed to read kafka message", zap.Error(err))
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}

		if !l.processUntilDone(ctx, msg) {
			return
		}

		if err := l.source.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// processUntilDone reports false when ctx was cancelled before msg was settled.
func (l *OrderListener) processUntilDone(ctx context.Context, msg kafka.Message) bool {
	faults := 0
	for attempt := 1; ; attempt++ {
		err := l.Process(ctx, msg.Value)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if !apperror.IsRetryable(err) {
			faults++
			if faults >= maxEventAttempts {
				l.logger.Error("Giving up on order event",
					zap.Int64("offset", msg.Offset),
					zap.Int("attempts", attempt),
					zap.Error(err),
				)
				return true
			}
		}
		l.logger.Warn("Failed to process order event, retrying",
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !sleep(ctx, l.eventBackoff(attempt)) {
			return false
		}
	}
}

func (l *OrderListener) eventBackoff(attempt int) time.Duration {
	d := time.Duration(attempt) * l.opts.EventBackoff
	if d > maxEventBackoff {
		return maxEventBackoff
	}
	return d
}

// Process handles one raw event. Malformed or unrelated events are dropped. An error is
// returned only when the event must be retried as a whole.
func (l *OrderListener) Process(ctx context.Context, value []byte) error {
	var event OrderCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}

	if event.EventType != eventOrderCompleted {
		return nil
	}

	l.logger.Info("Processing OrderCompleted event",
		zap.String("order_id", event.Payload.ID),
		zap.Int("lines", len(event.Payload.Items)),
	)

	for i, item := range event.Payload.Items {
		lineID := item.LineID
		if lineID == "" {
			lineID = strconv.Itoa(i)
		}
		if err := l.processLine(ctx, &event.Payload, lineID, item); err != nil {
			return err
		}
	}
	return nil
}

func (l *OrderListener) processLine(ctx context.Context, order *OrderPayload, lineID string, item OrderItemPayload) error {
	key := DedupKey(order.ID, lineID)
	claimed, err := l.guard.Claim(ctx, key, l.opts.DedupTTL)
	if err != nil {
		return fmt.Errorf("claim %s: %w", key, err)
	}
	if !claimed {
		l.logger.Info("Order line already consumed, skipping",
			zap.String("order_id", order.ID),
			zap.String("line_id", lineID),
		)
		return nil
	}

	input := &dto.DeductInput{
		VenueID:        order.VenueID,
		ProductID:      item.ProductID,
		Quantity:       item.Quantity,
		OrderReference: order.ID,
		ActorID:        order.CashierID,
		SkipOptional:   item.SkipOptional,
	}

	err = l.deductWithRetry(ctx, input)
	if err == nil {
		return nil
	}

	l.logger.Error("Failed to deduct stock for order line",
		zap.String("order_id", order.ID),
		zap.String("line_id", lineID),
		zap.String("product_id", item.ProductID),
		zap.String("kind", apperror.KindOf(err).String()),
		zap.Error(err),
	)
	// Let a redelivery or a manual replay try the line again.
	if relErr := l.guard.Release(ctx, key); relErr != nil {
		l.logger.Error("Failed to release order line claim", zap.String("key", key), zap.Error(relErr))
	}
	// Business outcomes are final for this line. Lock conflicts and system faults retry
	// the event, and lines already done stay claimed.
	if apperror.IsRetryable(err) || apperror.KindOf(err) == apperror.KindUnknown {
		return err
	}
	return nil
}

// deductWithRetry retries lock conflicts only, with linear backoff.
func (l *OrderListener) deductWithRetry(ctx context.Context, input *dto.DeductInput) error {
	var err error
	for attempt := 1; attempt <= l.opts.Attempts; attempt++ {
		_, err = l.uc.Deduct(ctx, input)
		if err == nil || !apperror.IsRetryable(err) {
			return err
		}
		if attempt < l.opts.Attempts && !sleep(ctx, time.Duration(attempt)*l.opts.Backoff) {
			return ctx.Err()
		}
	}
	return err
}

func DedupKey(orderID, lineID string) string {
	return fmt.Sprintf("consumption:%s:%s", orderID, lineID)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
