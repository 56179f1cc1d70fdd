package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultNoticeTTL is how long a transient notice stays visible.
const DefaultNoticeTTL = 4 * time.Second

// Notice is a transient per-doctor toast. Publishing a new notice replaces
// the previous one immediately; notices are never queued.
type Notice struct {
	Kind      string    `json:"kind"` // "success" or "error"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoticeStore keeps at most one live notice per doctor in Redis, expiring
// it after the configured TTL so stale toasts never resurface.
type NoticeStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewNoticeStore(rdb *redis.Client, ttl time.Duration) *NoticeStore {
	if rdb == nil {
		panic("appointments: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &NoticeStore{
		redis:  rdb,
		ttl:    ttl,
		tracer: otel.Tracer("mapleime.appointments.notices"),
	}
}

// Publish replaces the doctor's current notice.
func (s *NoticeStore) Publish(ctx context.Context, doctorID string, n Notice) error {
	ctx, span := s.tracer.Start(ctx, "notices.publish")
	defer span.End()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(n)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: marshal notice: %w", err)
	}
	if err := s.redis.Set(ctx, noticeKey(doctorID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: persist notice: %w", err)
	}
	return nil
}

// Current returns the doctor's live notice, or nil when none is active.
func (s *NoticeStore) Current(ctx context.Context, doctorID string) (*Notice, error) {
	ctx, span := s.tracer.Start(ctx, "notices.current")
	defer span.End()

	data, err := s.redis.Get(ctx, noticeKey(doctorID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: load notice: %w", err)
	}
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: decode notice: %w", err)
	}
	return &n, nil
}

func noticeKey(doctorID string) string {
	return "notice:" + doctorID
}
