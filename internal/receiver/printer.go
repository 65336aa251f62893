package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ordersim/internal/model"
	"ordersim/internal/transport"
)

// Printer renders received orders for a human reader.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

// Print writes a partition header, the indented order and a "-" separator.
func (p *Printer) Print(ev transport.Event, o model.Order) error {
	body, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	enqueued := "unknown"
	if !ev.EnqueuedTime.IsZero() {
		enqueued = ev.EnqueuedTime.Format(time.RFC3339Nano)
	}
	_, err = fmt.Fprintf(p.w, "[PARTITION %s] Sequence %d enqueued at %s\n%s\n-\n",
		ev.PartitionID, ev.SequenceNumber, enqueued, body)
	return err
}
