package receiver

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ordersim/internal/generator"
	"ordersim/internal/metrics"
	"ordersim/internal/model"
	"ordersim/internal/transport"
)

// fakeStream implements transport.Stream for tests. Once the queue is empty
// it returns err, or blocks until ctx is done when err is nil.
type fakeStream struct {
	events []transport.Event
	err    error
	taken  int
}

func (f *fakeStream) Receive(ctx context.Context) (transport.Event, error) {
	if f.taken < len(f.events) {
		ev := f.events[f.taken]
		f.taken++
		return ev, nil
	}
	if f.err != nil {
		return transport.Event{}, f.err
	}
	<-ctx.Done()
	return transport.Event{}, ctx.Err()
}

func (f *fakeStream) Close(context.Context) error { return nil }

func orderFor(t *testing.T, g *generator.Generator, storeID string) model.Order {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if o := g.Order(); o.StoreID == storeID {
			return o
		}
	}
	t.Fatalf("generator never produced %s", storeID)
	return model.Order{}
}

func eventOf(t *testing.T, seq int64, o model.Order) transport.Event {
	t.Helper()
	b, err := model.Encode(o)
	require.NoError(t, err)
	return transport.Event{PartitionID: "0", SequenceNumber: seq, EnqueuedTime: time.Unix(1700000000, 0).UTC(), Body: b}
}

func TestRun_StoreFilterAndMaxEvents(t *testing.T) {
	g := generator.New(5)
	ny1, sf1, sf2, ny2, ny3 := orderFor(t, g, "STORE-NY-001"), orderFor(t, g, "STORE-SF-003"),
		orderFor(t, g, "STORE-SF-003"), orderFor(t, g, "STORE-NY-001"), orderFor(t, g, "STORE-NY-001")
	stream := &fakeStream{events: []transport.Event{
		eventOf(t, 1, ny1), eventOf(t, 2, sf1), eventOf(t, 3, sf2), eventOf(t, 4, ny2), eventOf(t, 5, ny3),
	}}

	var out bytes.Buffer
	m := metrics.NewRegistry()
	r, err := New(stream, Options{MaxEvents: 2, StoreIDs: []string{" STORE-NY-001 ", ""}}, &out, zaptest.NewLogger(t), m)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, stream.taken, "stops right after the second match")

	s := out.String()
	assert.Contains(t, s, ny1.OrderID)
	assert.Contains(t, s, ny2.OrderID)
	assert.NotContains(t, s, ny3.OrderID)
	assert.NotContains(t, s, "STORE-SF-003")
	assert.Equal(t, 2, strings.Count(s, "\n-\n"))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventsReceived))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventsFiltered))
}

func TestRun_MalformedPayloadIsSkipped(t *testing.T) {
	g := generator.New(8)
	good := g.Order()
	stream := &fakeStream{events: []transport.Event{
		{PartitionID: "1", SequenceNumber: 1, Body: []byte("not json")},
		eventOf(t, 2, good),
	}}

	var out bytes.Buffer
	m := metrics.NewRegistry()
	r, err := New(stream, Options{MaxEvents: 1}, &out, zaptest.NewLogger(t), m)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out.String(), good.OrderID)
	assert.NotContains(t, out.String(), "not json")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DecodeFailures))
}

func TestRun_StreamFailureIsFatal(t *testing.T) {
	boom := errors.New("subscription lost")
	r, err := New(&fakeStream{err: boom}, Options{}, &bytes.Buffer{}, zaptest.NewLogger(t), metrics.NewRegistry())
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_UnboundedStopsCleanlyOnCancel(t *testing.T) {
	g := generator.New(2)
	stream := &fakeStream{events: []transport.Event{eventOf(t, 1, g.Order()), eventOf(t, 2, g.Order())}}
	r, err := New(stream, Options{}, &bytes.Buffer{}, zaptest.NewLogger(t), metrics.NewRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNew_RejectsNegativeMax(t *testing.T) {
	_, err := New(&fakeStream{}, Options{MaxEvents: -1}, &bytes.Buffer{}, zaptest.NewLogger(t), metrics.NewRegistry())
	assert.Error(t, err)
}

func TestPrinter_Format(t *testing.T) {
	o := generator.NewWithClock(1, func() time.Time { return time.Unix(0, 0) }).Order()
	var out bytes.Buffer
	ev := transport.Event{PartitionID: "3", SequenceNumber: 17, EnqueuedTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, NewPrinter(&out).Print(ev, o))

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "[PARTITION 3] Sequence 17 enqueued at 2026-01-01T00:00:00Z", lines[0])
	assert.Equal(t, "{", lines[1])
	assert.Equal(t, `  "order_id": "`+o.OrderID+`",`, lines[2])
	assert.True(t, strings.HasSuffix(out.String(), "}\n-\n"))
}
