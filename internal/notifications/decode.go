package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rug/internal/event"
	"rug/internal/relay"
)

// ErrNoTenant is returned for a relevant notification that names no tenant.
var ErrNoTenant = errors.New("notifications: no tenant id in notification")

// message is an OpenStack notification as emitted by neutron.
type message struct {
	EventType string         `json:"event_type"`
	TenantID  string         `json:"_context_tenant_id"`
	ProjectID string         `json:"_context_project_id"`
	Payload   map[string]any `json:"payload"`
}

// envelope is the oslo.messaging v2 wrapper around a serialized message.
type envelope struct {
	Version string `json:"oslo.version"`
	Message string `json:"oslo.message"`
}

// Decode turns a raw bus record into a notification for the relay. ok is
// false for event types the router fleet does not care about.
func Decode(value []byte) (n relay.Notification, ok bool, err error) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return relay.Notification{}, false, fmt.Errorf("notifications: malformed record: %w", err)
	}
	if env.Version != "" {
		value = []byte(env.Message)
	}

	var msg message
	if err := json.Unmarshal(value, &msg); err != nil {
		return relay.Notification{}, false, fmt.Errorf("notifications: malformed message: %w", err)
	}

	crud, routerID, relevant := classify(msg.EventType, msg.Payload)
	if !relevant {
		return relay.Notification{}, false, nil
	}

	tenantID := firstNonEmpty(
		msg.TenantID,
		msg.ProjectID,
		stringField(msg.Payload, "tenant_id"),
		nestedString(msg.Payload, "router", "tenant_id"),
	)
	if tenantID == "" {
		return relay.Notification{}, false, fmt.Errorf("%w: %s", ErrNoTenant, msg.EventType)
	}

	ev, err := event.New(tenantID, routerID, crud, msg.Payload)
	if err != nil {
		return relay.Notification{}, false, err
	}

	return relay.Notification{Key: tenantID, Event: ev}, true, nil
}

// classify maps a neutron event type onto an operation and, where the
// payload names one, a router ID.
func classify(eventType string, payload map[string]any) (event.CRUD, string, bool) {
	switch {
	case eventType == "router.create.end":
		return event.CREATE, nestedString(payload, "router", "id"), true
	case eventType == "router.update.end":
		return event.UPDATE, nestedString(payload, "router", "id"), true
	case eventType == "router.delete.end":
		return event.DELETE, stringField(payload, "router_id"), true
	case strings.HasPrefix(eventType, "router.interface."):
		return event.UPDATE, nestedString(payload, "router_interface", "id"), true
	case strings.HasSuffix(eventType, ".rebuild"):
		return event.REBUILD, stringField(payload, "router_id"), true
	case strings.HasSuffix(eventType, ".end") && hasAnyPrefix(eventType, "subnet.", "port.", "floatingip."):
		// Tenant-wide: the worker works out which router is affected.
		return event.UPDATE, "", true
	default:
		return "", "", false
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func nestedString(m map[string]any, outer, key string) string {
	inner, _ := m[outer].(map[string]any)
	return stringField(inner, key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
