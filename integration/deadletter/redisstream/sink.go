package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/eventbus/core/eventbus"
)

var (
	// ErrAppendFailed is returned when a failure record could not be added to the stream.
	ErrAppendFailed = errors.New("failed to append failure record to stream")

	// ErrMalformedRecord is returned by ParseRecord for entries missing required fields.
	ErrMalformedRecord = errors.New("malformed failure record")
)

// Stream field names.
const (
	fieldID         = "id"
	fieldDispatchID = "dispatch_id"
	fieldEventType  = "event_type"
	fieldEventID    = "event_id"
	fieldHandler    = "handler"
	fieldMessage    = "message"
	fieldFatal      = "fatal"
	fieldOccurredAt = "occurred_at"
)

// Streamer is the part of a Redis client the sink needs.
// *redis.Client, *redis.ClusterClient and redis.UniversalClient satisfy it.
type Streamer interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Sink appends unhandled handler failures to a Redis stream.
// It implements eventbus.FailureSink and is safe for concurrent use.
type Sink struct {
	client  Streamer
	stream  string
	maxLen  int64
	timeout time.Duration
}

var _ eventbus.FailureSink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithStream sets the stream key. Default "eventbus:failures".
func WithStream(stream string) Option {
	return func(s *Sink) {
		if stream != "" {
			s.stream = stream
		}
	}
}

// WithMaxLen caps the stream length (approximate trimming). Zero disables trimming.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		if n >= 0 {
			s.maxLen = n
		}
	}
}

// WithTimeout bounds each append. Zero uses the caller's context as is.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// New creates a sink writing through client.
//
// Example:
//
//	client, err := redis.Connect(ctx, redisCfg)
//	if err != nil {
//	    return err
//	}
//	bus := eventbus.New(eventbus.WithFailureSink(redisstream.New(client)))
func New(client Streamer, opts ...Option) *Sink {
	s := &Sink{
		client:  client,
		stream:  "eventbus:failures",
		maxLen:  10000,
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig creates a sink from cfg. Options are applied after the config.
func NewFromConfig(client Streamer, cfg Config, opts ...Option) *Sink {
	base := []Option{
		WithStream(cfg.Stream),
		WithMaxLen(cfg.MaxLen),
		WithTimeout(cfg.Timeout),
	}
	return New(client, append(base, opts...)...)
}

// Stream returns the stream key records are appended to.
func (s *Sink) Stream() string {
	return s.stream
}

// RecordFailure appends rec as one stream entry.
// The append outlives cancellation of ctx; only the sink timeout bounds it.
func (s *Sink) RecordFailure(ctx context.Context, rec eventbus.FailureRecord) error {
	ctx = context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: encode(rec),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Join(ErrAppendFailed, fmt.Errorf("stream %s: %w", s.stream, err))
	}
	return nil
}

func encode(rec eventbus.FailureRecord) []any {
	return []any{
		fieldID, rec.ID,
		fieldDispatchID, rec.DispatchID,
		fieldEventType, rec.EventType,
		fieldEventID, rec.EventID,
		fieldHandler, rec.Handler,
		fieldMessage, rec.Message,
		fieldFatal, strconv.FormatBool(rec.Fatal),
		fieldOccurredAt, rec.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// ParseRecord decodes a stream entry written by Sink, for consumers replaying failures.
func ParseRecord(msg redis.XMessage) (eventbus.FailureRecord, error) {
	str := func(key string) string {
		v, _ := msg.Values[key].(string)
		return v
	}

	rec := eventbus.FailureRecord{
		ID:         str(fieldID),
		DispatchID: str(fieldDispatchID),
		EventType:  str(fieldEventType),
		EventID:    str(fieldEventID),
		Handler:    str(fieldHandler),
		Message:    str(fieldMessage),
	}
	if rec.ID == "" || rec.EventType == "" || rec.Handler == "" {
		return eventbus.FailureRecord{}, fmt.Errorf("%w: entry %s", ErrMalformedRecord, msg.ID)
	}

	if v := str(fieldFatal); v != "" {
		fatal, err := strconv.ParseBool(v)
		if err != nil {
			return eventbus.FailureRecord{}, errors.Join(ErrMalformedRecord, err)
		}
		rec.Fatal = fatal
	}

	if v := str(fieldOccurredAt); v != "" {
		at, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return eventbus.FailureRecord{}, errors.Join(ErrMalformedRecord, err)
		}
		rec.OccurredAt = at
	}

	return rec, nil
}
