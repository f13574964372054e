package booking

import (
	"fmt"
	"strings"

	"github.com/freightcore/backend/internal/domain/shared"
)

// Status represents the physical handling state of a booking
type Status string

const (
	StatusBooked    Status = "booked"
	StatusLoaded    Status = "loaded"
	StatusInTransit Status = "in_transit"
	StatusUnloaded  Status = "unloaded"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusLoaded, StatusInTransit, StatusUnloaded, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for delivered and cancelled bookings
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether an edge exists, ignoring workflow context
func (s Status) CanTransitionTo(target Status) bool {
	_, ok := transitions[edge{s, target}]
	return ok
}

// WorkflowContext names the operational process driving a status change
type WorkflowContext string

const (
	ContextLoading   WorkflowContext = "loading"
	ContextUnloading WorkflowContext = "unloading"
	ContextGeneral   WorkflowContext = "general"
)

// IsValid checks if the context is a known value
func (c WorkflowContext) IsValid() bool {
	switch c {
	case ContextLoading, ContextUnloading, ContextGeneral:
		return true
	}
	return false
}

// String returns the string representation of WorkflowContext
func (c WorkflowContext) String() string {
	return string(c)
}

type edge struct {
	from Status
	to   Status
}

var transitions = map[edge][]WorkflowContext{
	{StatusBooked, StatusLoaded}:      {ContextLoading},
	{StatusLoaded, StatusInTransit}:   {ContextLoading, ContextGeneral},
	{StatusInTransit, StatusUnloaded}: {ContextUnloading},
	{StatusUnloaded, StatusDelivered}: {ContextUnloading, ContextGeneral},
	{StatusBooked, StatusCancelled}:   {ContextGeneral},
	{StatusLoaded, StatusCancelled}:   {ContextGeneral},
}

// AllowedContexts returns the contexts accepted for an edge, nil if the edge
// does not exist
func AllowedContexts(from, to Status) []WorkflowContext {
	ctxs, ok := transitions[edge{from, to}]
	if !ok {
		return nil
	}
	return append([]WorkflowContext(nil), ctxs...)
}

// Transition validates a status change. It is pure: applying the change is
// the caller's job.
func Transition(current, requested Status, ctx WorkflowContext) error {
	if !requested.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown status %q", requested))
	}
	if !ctx.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown workflow context %q", ctx))
	}
	allowed, ok := transitions[edge{current, requested}]
	if !ok {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("cannot move booking from %s to %s", current, requested))
	}
	for _, c := range allowed {
		if c == ctx {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, c := range allowed {
		names[i] = c.String()
	}
	return shared.NewDomainError(shared.CodeWrongWorkflowContext,
		fmt.Sprintf("%s to %s requires the %s workflow, got %s",
			current, requested, strings.Join(names, " or "), ctx))
}
