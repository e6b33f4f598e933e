package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hotel-reservation/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StatusUpdate is one event on a session's status feed. For a confirmed
// session it also carries the allocation outcome, so a watching device learns
// whether the booking actually got created.
type StatusUpdate struct {
	Status         string `json:"status"`
	ReservationIDs []uint `json:"reservation_ids,omitempty"`
	RoomIDs        []uint `json:"room_ids,omitempty"`
	Error          string `json:"error,omitempty"`
}

// PaymentStore holds short-lived payment intents and their staged reservation
// payloads, and carries a per-session status feed. The transport behind
// Publish/Subscribe is an implementation detail; the state machine only needs
// "await next status or deadline".
type PaymentStore interface {
	Create(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string) (models.PaymentSession, error)
	Get(ctx context.Context, id string) (models.PaymentSession, error)
	// SetStatus performs the single legal transition pending -> confirmed or
	// pending -> rejected. The deadline check happens atomically with the
	// transition: a confirm arriving after expiry loses, always.
	SetStatus(ctx context.Context, id, status string, now time.Time) error

	StagePayload(ctx context.Context, id string, req AllocationRequest) error
	Payload(ctx context.Context, id string) (AllocationRequest, error)

	Publish(ctx context.Context, id string, update StatusUpdate) error
	Subscribe(ctx context.Context, id string) (<-chan StatusUpdate, func(), error)
}

// transitionScript flips a pending session to a terminal status only while the
// deadline has not passed. Runs server-side so concurrent confirm/reject
// attempts from multiple devices serialize on Redis: the first one wins.
var transitionScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then return 'missing' end
if status ~= 'pending' then return 'finalized' end
if tonumber(ARGV[2]) >= tonumber(redis.call('HGET', KEYS[1], 'expires_at')) then return 'expired' end
redis.call('HSET', KEYS[1], 'status', ARGV[1])
return 'ok'
`)

// sessionRetention keeps terminal/expired sessions readable for a while after
// the payment window closes.
const sessionRetention = time.Hour

// RedisPaymentStore persists sessions as Redis hashes with a TTL and publishes
// status updates on a per-session pub/sub channel.
type RedisPaymentStore struct {
	Client *redis.Client
	Window time.Duration
}

func NewRedisPaymentStore(client *redis.Client, window time.Duration) *RedisPaymentStore {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &RedisPaymentStore{Client: client, Window: window}
}

func sessionKey(id string) string { return "payment:session:" + id }
func payloadKey(id string) string { return "payment:payload:" + id }
func channelKey(id string) string { return "payment:" + id }

func (s *RedisPaymentStore) Create(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string) (models.PaymentSession, error) {
	now := time.Now()
	session := models.PaymentSession{
		ID:        uuid.NewString(),
		Amount:    amount,
		IsDeposit: isDeposit,
		UserID:    userID,
		UserName:  userName,
		Status:    models.PaymentPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.Window),
	}

	deposit := "0"
	if isDeposit {
		deposit = "1"
	}
	key := sessionKey(session.ID)
	pipe := s.Client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"amount":     strconv.FormatFloat(amount, 'f', -1, 64),
		"is_deposit": deposit,
		"user_id":    strconv.FormatUint(uint64(userID), 10),
		"user_name":  userName,
		"status":     session.Status,
		"created_at": strconv.FormatInt(now.Unix(), 10),
		"expires_at": strconv.FormatInt(session.ExpiresAt.Unix(), 10),
	})
	pipe.Expire(ctx, key, s.Window+sessionRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.PaymentSession{}, fmt.Errorf("failed to create payment session: %w", err)
	}

	return session, nil
}

func (s *RedisPaymentStore) Get(ctx context.Context, id string) (models.PaymentSession, error) {
	fields, err := s.Client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return models.PaymentSession{}, fmt.Errorf("failed to read payment session: %w", err)
	}
	if len(fields) == 0 {
		return models.PaymentSession{}, ErrSessionNotFound
	}

	amount, _ := strconv.ParseFloat(fields["amount"], 64)
	userID, _ := strconv.ParseUint(fields["user_id"], 10, 64)
	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	expiresAt, _ := strconv.ParseInt(fields["expires_at"], 10, 64)

	return models.PaymentSession{
		ID:        id,
		Amount:    amount,
		IsDeposit: fields["is_deposit"] == "1",
		UserID:    uint(userID),
		UserName:  fields["user_name"],
		Status:    fields["status"],
		CreatedAt: time.Unix(createdAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
	}, nil
}

func (s *RedisPaymentStore) SetStatus(ctx context.Context, id, status string, now time.Time) error {
	if status != models.PaymentConfirmed && status != models.PaymentRejected {
		return ErrInvalidTransition
	}

	res, err := transitionScript.Run(ctx, s.Client,
		[]string{sessionKey(id)}, status, now.Unix()).Text()
	if err != nil {
		return fmt.Errorf("failed to update payment session: %w", err)
	}
	switch res {
	case "ok":
		return nil
	case "missing":
		return ErrSessionNotFound
	case "expired":
		return ErrSessionExpired
	default:
		return ErrInvalidTransition
	}
}

func (s *RedisPaymentStore) StagePayload(ctx context.Context, id string, req AllocationRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode staged payload: %w", err)
	}
	if err := s.Client.Set(ctx, payloadKey(id), raw, s.Window+sessionRetention).Err(); err != nil {
		return fmt.Errorf("failed to stage payload: %w", err)
	}
	return nil
}

func (s *RedisPaymentStore) Payload(ctx context.Context, id string) (AllocationRequest, error) {
	raw, err := s.Client.Get(ctx, payloadKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return AllocationRequest{}, ErrSessionNotFound
	}
	if err != nil {
		return AllocationRequest{}, fmt.Errorf("failed to read staged payload: %w", err)
	}

	var req AllocationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return AllocationRequest{}, fmt.Errorf("failed to decode staged payload: %w", err)
	}
	return req, nil
}

func (s *RedisPaymentStore) Publish(ctx context.Context, id string, update StatusUpdate) error {
	raw, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode status update: %w", err)
	}
	if err := s.Client.Publish(ctx, channelKey(id), raw).Err(); err != nil {
		return fmt.Errorf("failed to publish status update: %w", err)
	}
	return nil
}

func (s *RedisPaymentStore) Subscribe(ctx context.Context, id string) (<-chan StatusUpdate, func(), error) {
	pubsub := s.Client.Subscribe(ctx, channelKey(id))
	// force the subscription onto the wire before the caller re-reads state
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to payment feed: %w", err)
	}

	updates := make(chan StatusUpdate, 4)
	go func() {
		defer close(updates)
		for msg := range pubsub.Channel() {
			var update StatusUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				continue
			}
			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	teardown := func() { _ = pubsub.Close() }
	return updates, teardown, nil
}
