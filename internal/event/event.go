// Package event defines the unit of work handed to the scheduler.
//
// An Event describes one request to act on a tenant's router. Events are
// produced by the notification listener or synthesized by the bootstrapper
// (always POLL) and are consumed exactly once by the scheduler. They are
// immutable: fields are unexported, the body is copied on the way in and on
// the way out.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// CRUD is the kind of operation an Event requests.
type CRUD string

const (
	// POLL asks the worker to reconcile the router's actual state.
	POLL CRUD = "POLL"

	// CREATE reports a newly created router.
	CREATE CRUD = "CREATE"

	// READ requests a status read without corrective action.
	READ CRUD = "READ"

	// UPDATE reports a change to an existing router or its interfaces.
	UPDATE CRUD = "UPDATE"

	// DELETE reports a removed router.
	DELETE CRUD = "DELETE"

	// REBUILD asks for the router appliance to be replaced.
	REBUILD CRUD = "REBUILD"
)

var knownCRUD = map[CRUD]bool{
	POLL:    true,
	CREATE:  true,
	READ:    true,
	UPDATE:  true,
	DELETE:  true,
	REBUILD: true,
}

// ParseCRUD converts a case-insensitive operation name into a CRUD.
func ParseCRUD(s string) (CRUD, error) {
	c := CRUD(strings.ToUpper(strings.TrimSpace(s)))
	if !knownCRUD[c] {
		return "", fmt.Errorf("%w: %q", ErrUnknownCRUD, s)
	}
	return c, nil
}

// Valid reports whether c is one of the known operation kinds.
func (c CRUD) Valid() bool {
	return knownCRUD[c]
}

var (
	// ErrEmptyTenant is returned when an Event is built without a tenant ID.
	ErrEmptyTenant = errors.New("event: tenant id must not be empty")

	// ErrUnknownCRUD is returned for an operation kind outside the CRUD set.
	ErrUnknownCRUD = errors.New("event: unknown crud")
)

// Event is an immutable request for the dispatch layer to act on a router.
type Event struct {
	tenantID string
	routerID string
	crud     CRUD
	body     map[string]any
}

// New builds an Event. routerID may be empty for tenant-wide notifications.
// The body is copied; a nil body is stored as an empty map.
func New(tenantID, routerID string, crud CRUD, body map[string]any) (Event, error) {
	if tenantID == "" {
		return Event{}, ErrEmptyTenant
	}
	if !crud.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownCRUD, crud)
	}

	b := copyBody(body)
	if b == nil {
		b = map[string]any{}
	}

	return Event{
		tenantID: tenantID,
		routerID: routerID,
		crud:     crud,
		body:     b,
	}, nil
}

// NewPoll builds the POLL event the bootstrapper synthesizes for each router.
func NewPoll(tenantID, routerID string) (Event, error) {
	return New(tenantID, routerID, POLL, nil)
}

// TenantID returns the owning tenant, which is also the scheduler key.
func (e Event) TenantID() string { return e.tenantID }

// RouterID returns the router the event refers to, or "" for tenant-wide events.
func (e Event) RouterID() string { return e.routerID }

// CRUD returns the requested operation kind.
func (e Event) CRUD() CRUD { return e.crud }

// Body returns a deep copy of the opaque payload.
func (e Event) Body() map[string]any {
	return copyBody(e.body)
}

// copyBody deep-copies the map and slice containers of a decoded JSON
// payload. Leaf values are immutable and shared.
func copyBody(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyBody(v)
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	case []map[string]any:
		if v == nil {
			return v
		}
		out := make([]map[string]any, len(v))
		for i, item := range v {
			out[i] = copyBody(item)
		}
		return out
	case []string:
		return slices.Clone(v)
	default:
		return v
	}
}

// Equal reports whether both events carry identical field values.
func (e Event) Equal(other Event) bool {
	if e.tenantID != other.tenantID || e.routerID != other.routerID || e.crud != other.crud {
		return false
	}
	// A nil body and an empty body are the same payload.
	if len(e.body) == 0 && len(other.body) == 0 {
		return true
	}
	return reflect.DeepEqual(e.body, other.body)
}

func (e Event) String() string {
	return fmt.Sprintf("<Event tenant=%s router=%s crud=%s>", e.tenantID, e.routerID, e.crud)
}

type wireEvent struct {
	TenantID string         `json:"tenant_id"`
	RouterID string         `json:"router_id"`
	CRUD     string         `json:"crud"`
	Body     map[string]any `json:"body"`
}

// MarshalJSON encodes the event with lowercase crud names.
func (e Event) MarshalJSON() ([]byte, error) {
	body := e.body
	if body == nil {
		body = map[string]any{}
	}
	return json.Marshal(wireEvent{
		TenantID: e.tenantID,
		RouterID: e.routerID,
		CRUD:     strings.ToLower(string(e.crud)),
		Body:     body,
	})
}

// UnmarshalJSON decodes and validates an event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("event: decode: %w", err)
	}

	crud, err := ParseCRUD(w.CRUD)
	if err != nil {
		return err
	}

	decoded, err := New(w.TenantID, w.RouterID, crud, w.Body)
	if err != nil {
		return err
	}

	*e = decoded
	return nil
}
