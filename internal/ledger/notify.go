package ledger

import (
	"context"
	"time"

	"incomebook/internal/log"
)

// Op names the kind of mutation carried by a ChangeEvent.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	EntryID string    `json:"entryId"`
	Op      Op        `json:"op"`
	At      time.Time `json:"at"`
}

// ChangeNotifier is told about mutations after they are persisted.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, ev ChangeEvent) error
}

// notify never fails the mutation; the entry is already saved.
func (s *Store) notify(ctx context.Context, id string, op Op) {
	if s.notifier == nil {
		return
	}
	ev := ChangeEvent{EntryID: id, Op: op, At: s.now()}
	if err := s.notifier.NotifyChange(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish entry change",
			log.FieldEntryID, id,
			"op", string(op),
			log.FieldError, err.Error())
	}
}
