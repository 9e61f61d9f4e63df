package memory

import (
	"context"
	"sync"

	appoutbox "hotelbook/internal/app/outbox"
)

// Outbox keeps records in memory until flushed. With a Publisher set, Flush
// delivers them in order and keeps whatever failed for the next flush.
type Outbox struct {
	Publisher appoutbox.Publisher

	mu      sync.Mutex
	records []appoutbox.EventRecord
	sent    []appoutbox.EventRecord
}

func NewOutbox(publisher appoutbox.Publisher) *Outbox {
	return &Outbox{Publisher: publisher}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, rec := range o.records {
		if o.Publisher != nil {
			if err := o.Publisher.Publish(ctx, rec); err != nil {
				o.records = append([]appoutbox.EventRecord(nil), o.records[i:]...)
				return err
			}
		}
		o.sent = append(o.sent, rec)
	}
	o.records = nil
	return nil
}

// Pending returns records not yet flushed.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

// Sent returns records flushed so far.
func (o *Outbox) Sent() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.sent...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
