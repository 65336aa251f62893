package receiver

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"ordersim/internal/metrics"
	"ordersim/internal/model"
	"ordersim/internal/transport"
)

// Options controls the receive loop. MaxEvents 0 means unbounded; an empty
// StoreIDs set disables filtering.
type Options struct {
	MaxEvents int
	StoreIDs  []string
}

type Receiver struct {
	stream  transport.Stream
	opts    Options
	filter  map[string]struct{}
	printer *Printer
	log     *zap.Logger
	metrics *metrics.Registry
}

func New(stream transport.Stream, opts Options, out io.Writer, log *zap.Logger, m *metrics.Registry) (*Receiver, error) {
	if opts.MaxEvents < 0 {
		return nil, fmt.Errorf("max events must be >= 0, got %d", opts.MaxEvents)
	}
	return &Receiver{
		stream:  stream,
		opts:    opts,
		filter:  storeFilter(opts.StoreIDs),
		printer: NewPrinter(out),
		log:     log,
		metrics: m,
	}, nil
}

// storeFilter trims ids and drops blanks; nil means accept everything.
func storeFilter(ids []string) map[string]struct{} {
	var set map[string]struct{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{})
		}
		set[id] = struct{}{}
	}
	return set
}

func (r *Receiver) accepts(storeID string) bool {
	if r.filter == nil {
		return true
	}
	_, ok := r.filter[storeID]
	return ok
}

// Run prints matching orders until MaxEvents were printed or ctx is
// cancelled, and returns how many were printed. Undecodable events are logged
// and skipped; a failing stream ends the run with an error.
func (r *Receiver) Run(ctx context.Context) (int, error) {
	received := 0
	more := func() bool {
		return ctx.Err() == nil && (r.opts.MaxEvents == 0 || received < r.opts.MaxEvents)
	}

	r.log.Info("receiver running", zap.Int("max_events", r.opts.MaxEvents), zap.Int("store_filter", len(r.filter)))

	for more() {
		ev, err := r.stream.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return received, fmt.Errorf("receive: %w", err)
		}
		r.log.Debug("received raw event", zap.String("partition", ev.PartitionID),
			zap.Int64("sequence", ev.SequenceNumber), zap.ByteString("body", ev.Body))

		order, err := model.Decode(ev.Body)
		if err != nil {
			r.metrics.DecodeFailures.Inc()
			r.log.Warn("skipping undecodable event", zap.String("partition", ev.PartitionID),
				zap.Int64("sequence", ev.SequenceNumber), zap.ByteString("body", ev.Body), zap.Error(err))
			continue
		}
		if !r.accepts(order.StoreID) {
			r.metrics.EventsFiltered.Inc()
			continue
		}

		if err := r.printer.Print(ev, order); err != nil {
			return received, fmt.Errorf("print: %w", err)
		}
		received++
		r.metrics.EventsReceived.Inc()
	}

	r.log.Info("receiver stopping", zap.Int("received", received), zap.Bool("interrupted", ctx.Err() != nil))
	return received, nil
}
