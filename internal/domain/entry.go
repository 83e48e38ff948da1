package domain

import (
	"fmt"
	"time"
)

// EntryKind is the mandatory discriminator of a transcript entry
type EntryKind string

const (
	KindHuman  EntryKind = "human"
	KindAI     EntryKind = "ai"
	KindSystem EntryKind = "system"
)

// EntryStatus tracks delivery of locally authored entries
type EntryStatus string

const (
	StatusDelivered EntryStatus = "delivered"
	StatusPending   EntryStatus = "pending"
	StatusFailed    EntryStatus = "failed"
)

// Entry is one line of a session transcript. Kind is fixed by the
// constructor that built the entry.
type Entry struct {
	Kind      EntryKind
	ID        int64 // zero for entries that were never persisted
	Content   string
	CreatedAt time.Time
	Status    EntryStatus
	Usage     *UsageMetadata
	Response  *ResponseMetadata
}

// HasDetails reports whether the entry carries inspectable model metadata
func (e Entry) HasDetails() bool {
	return e.Kind == KindAI && e.Usage != nil && e.Response != nil
}

// NewHumanEntry builds the optimistic local entry for a message being sent
func NewHumanEntry(text string, now time.Time) Entry {
	return Entry{
		Kind:      KindHuman,
		Content:   text,
		CreatedAt: now,
		Status:    StatusPending,
	}
}

// EntryFromResponse builds an AI entry from a live chat response
func EntryFromResponse(resp ChatResponse, now time.Time) (Entry, error) {
	kind, err := KindOf(resp.Type)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Kind:      kind,
		Content:   resp.Content,
		CreatedAt: now,
		Status:    StatusDelivered,
		Usage:     resp.Usage,
		Response:  resp.Response,
	}, nil
}

// EntryFromMessage builds an entry from persisted history
func EntryFromMessage(msg SessionMessage) (Entry, error) {
	kind, err := KindOf(msg.Type)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Kind:      kind,
		ID:        msg.ID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		Status:    StatusDelivered,
	}, nil
}

// KindOf maps a wire message type onto a transcript kind
func KindOf(t MessageType) (EntryKind, error) {
	switch t {
	case MessageHuman, MessageUser:
		return KindHuman, nil
	case MessageAI:
		return KindAI, nil
	case MessageSystem:
		return KindSystem, nil
	default:
		return "", fmt.Errorf("unknown message type %q", t)
	}
}
