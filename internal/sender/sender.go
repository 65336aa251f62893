package sender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ordersim/internal/generator"
	"ordersim/internal/metrics"
	"ordersim/internal/model"
	"ordersim/internal/transport"
)

// ErrInvalidOptions marks a configuration that must be rejected at startup.
var ErrInvalidOptions = errors.New("invalid sender options")

// Options controls the send loop. Count 0 means unbounded.
type Options struct {
	Count    int           `validate:"gte=0"`
	MinDelay time.Duration `validate:"gte=0"`
	MaxDelay time.Duration `validate:"gte=0"`
}

// Validate rejects negative values and MinDelay > MaxDelay. Values are
// never swapped or clamped.
func (o Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.MinDelay > o.MaxDelay {
		return fmt.Errorf("%w: min delay %s is greater than max delay %s", ErrInvalidOptions, o.MinDelay, o.MaxDelay)
	}
	return nil
}

// Sender publishes generated orders one at a time.
type Sender struct {
	pub     transport.Publisher
	gen     *generator.Generator
	opts    Options
	log     *zap.Logger
	metrics *metrics.Registry

	jitter *gofakeit.Faker
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(pub transport.Publisher, gen *generator.Generator, opts Options, log *zap.Logger, m *metrics.Registry) (*Sender, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Sender{
		pub:     pub,
		gen:     gen,
		opts:    opts,
		log:     log,
		metrics: m,
		jitter:  gofakeit.New(0),
		sleep:   sleepContext,
	}, nil
}

// Run sends until Count orders went out or ctx is cancelled, and returns the
// number sent. A publish failure stops the loop and is returned as is; there
// is no local retry.
func (s *Sender) Run(ctx context.Context) (int, error) {
	sent := 0
	more := func() bool {
		return ctx.Err() == nil && (s.opts.Count == 0 || sent < s.opts.Count)
	}

	s.log.Info("sender running", zap.Int("count", s.opts.Count),
		zap.Duration("min_delay", s.opts.MinDelay), zap.Duration("max_delay", s.opts.MaxDelay))

	for more() {
		order := s.gen.Order()
		body, err := model.Encode(order)
		if err != nil {
			return sent, err
		}
		s.log.Debug("sending order payload", zap.ByteString("payload", body))

		t0 := time.Now()
		if err := s.pub.Publish(ctx, order.OrderID, body); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.metrics.PublishFailures.Inc()
			return sent, fmt.Errorf("publish order %s: %w", order.OrderID, err)
		}
		s.metrics.PublishLatency.Observe(time.Since(t0).Seconds())
		s.metrics.OrdersSent.Inc()
		sent++
		s.log.Info("sent order", zap.Int("sent", sent),
			zap.String("order_id", order.OrderID), zap.String("store_id", order.StoreID))

		if more() {
			// a cancelled sleep makes more() false
			_ = s.sleep(ctx, s.delay())
		}
	}

	s.log.Info("sender stopping", zap.Int("sent", sent), zap.Bool("interrupted", ctx.Err() != nil))
	return sent, nil
}

func (s *Sender) delay() time.Duration {
	span := s.opts.MaxDelay - s.opts.MinDelay
	return s.opts.MinDelay + time.Duration(s.jitter.Float64()*float64(span))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
