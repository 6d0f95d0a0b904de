package massa

import "context"

// EventSubscriber defines the contract event subscription interface.
type EventSubscriber interface {
	// SubscribeEvents subscribes to contract output events matching the
	// filter.
	SubscribeEvents(ctx context.Context, filter EventFilter) (<-chan ContractEvent, error)

	// Close closes the WebSocket connection.
	Close() error
}

// EventFilter narrows an event subscription.
type EventFilter struct {
	// EmitterAddress filters events emitted by this contract. Empty
	// subscribes to all events.
	EmitterAddress string
	// OriginalCallerAddress filters events by the calling account.
	OriginalCallerAddress string
}

// ContractEvent is one smart contract output event.
type ContractEvent struct {
	// Data is the event payload as emitted by the contract.
	Data string
	// EmitterAddress is the contract that produced the event.
	EmitterAddress string
	// CallerAddress is the account at the bottom of the call stack.
	CallerAddress string
	// OriginOperationID ties the event to the operation that caused it.
	OriginOperationID string
	// Period and Thread locate the slot the event was produced in.
	Period uint64
	Thread uint8
	// IsFinal reports whether the producing slot is final.
	IsFinal bool
}
