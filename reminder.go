package lendcore

import (
	"context"
	"sync"
	"sync/atomic"
)

// NoOpNotifier discards reminders. Installed by default so reminder
// dispatch is always safe to trigger.
type NoOpNotifier struct{}

// Send describes the send operation and its observable behavior.
func (NoOpNotifier) Send(context.Context, Reminder) error { return nil }

// ChannelNotifier delivers reminders onto a channel. Useful for tests and
// for bridging to an application-owned delivery worker.
type ChannelNotifier struct {
	reminders chan Reminder
}

// NewChannelNotifier describes the newchannelnotifier operation and its observable behavior.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNotifier{
		reminders: make(chan Reminder, buffer),
	}
}

// Send describes the send operation and its observable behavior.
func (n *ChannelNotifier) Send(ctx context.Context, reminder Reminder) error {
	select {
	case n.reminders <- reminder:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reminders describes the reminders operation and its observable behavior.
func (n *ChannelNotifier) Reminders() <-chan Reminder {
	return n.reminders
}

// reminderDispatcher hands reminders to the notifier off the caller's
// goroutine. Reminders are fire-and-forget: a full buffer drops the
// reminder and counts it, and a notifier error is swallowed. Nothing here
// may block or roll back a lending operation.
type reminderDispatcher struct {
	cfg       ReminderConfig
	notifier  Notifier
	ch        chan Reminder
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newReminderDispatcher(cfg ReminderConfig, notifier Notifier) *reminderDispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if notifier == nil {
		notifier = NoOpNotifier{}
	}

	d := &reminderDispatcher{
		cfg:      cfg,
		notifier: notifier,
		ch:       make(chan Reminder, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *reminderDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case reminder := <-d.ch:
			_ = d.notifier.Send(context.Background(), reminder)
		case <-d.done:
			for {
				select {
				case reminder := <-d.ch:
					_ = d.notifier.Send(context.Background(), reminder)
				default:
					return
				}
			}
		}
	}
}

func (d *reminderDispatcher) Dispatch(reminder Reminder) {
	if d == nil || d.closed.Load() {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- reminder:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- reminder:
	case <-d.done:
	}
}

func (d *reminderDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *reminderDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
