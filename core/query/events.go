package query

import (
	"context"
	"time"
)

// PaginationEventType names a stage of a paginate call.
type PaginationEventType string

const (
	PaginateStart   PaginationEventType = "paginate:start"
	PaginateSuccess PaginationEventType = "paginate:success"
	PaginateFailed  PaginationEventType = "paginate:failed"
)

// PaginationEvent is emitted around every paginate call.
type PaginationEvent struct {
	Type       PaginationEventType `json:"type"`
	Timestamp  int64               `json:"timestamp"` // Unix milliseconds.
	QueryID    string              `json:"queryId"`   // Shared by the events of one call.
	Collection string              `json:"collection"`
	Options    *Options            `json:"options,omitempty"`
	Queries    []string            `json:"queries,omitempty"`  // Compiled expressions, once known.
	Result     *Result             `json:"result,omitempty"`   // Set on success.
	Error      *string             `json:"error,omitempty"`    // Set on failure.
	Duration   *int64              `json:"duration,omitempty"` // Milliseconds since the start event.
}

// EventCallbackFunction receives pagination events.
type EventCallbackFunction func(ctx context.Context, event PaginationEvent) error

// SubscriptionInfo tracks a registered event callback.
type SubscriptionInfo struct {
	Event       PaginationEventType
	Label       string
	Unsubscribe func()
}

// RegisterSubscriptionOptions defines options for registering a subscription.
type RegisterSubscriptionOptions struct {
	Event    PaginationEventType
	Label    string
	Callback EventCallbackFunction
}

func createEvent(
	eventType PaginationEventType,
	queryID string,
	collection string,
	options *Options,
	queries []string,
	result *Result,
	err *string,
	startTime time.Time,
) PaginationEvent {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	return PaginationEvent{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		QueryID:    queryID,
		Collection: collection,
		Options:    options,
		Queries:    queries,
		Result:     result,
		Error:      err,
		Duration:   duration,
	}
}
