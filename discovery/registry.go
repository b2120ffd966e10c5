package discovery

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slog"
)

// EventType classifies service change events.
type EventType string

const (
	EventServiceRegistered   EventType = "serviceRegistered"
	EventServiceDeregistered EventType = "serviceDeregistered"
)

// Event is the bounded, typed payload published on service changes.
type Event struct {
	Type    EventType
	Service ServiceInfo
}

// Registry is the in-memory catalogue of installed services. Changes are
// published to subscribers over an explicit pub/sub interface rather than
// ambient global state.
type Registry struct {
	logger *slog.Logger

	mu          sync.RWMutex
	services    map[string]ServiceInfo
	subscribers map[int]chan Event
	nextSubID   int
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:      logger.With(slog.String("component", "discovery")),
		services:    make(map[string]ServiceInfo),
		subscribers: make(map[int]chan Event),
	}
}

// Register adds or replaces a service entry and notifies subscribers.
func (r *Registry) Register(info ServiceInfo) error {
	if info.ID == "" || info.Addr == "" {
		return fmt.Errorf("service info needs id and addr: %+v", info)
	}
	r.mu.Lock()
	r.services[info.ID] = info
	r.mu.Unlock()

	r.logger.Info("service registered",
		slog.String("id", info.ID), slog.String("type", string(info.Type)), slog.String("addr", info.Addr))
	r.publish(Event{Type: EventServiceRegistered, Service: info})
	return nil
}

// Deregister removes a service entry and notifies subscribers.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	info, ok := r.services[id]
	delete(r.services, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	r.logger.Info("service deregistered", slog.String("id", id))
	r.publish(Event{Type: EventServiceDeregistered, Service: info})
}

// FlowServices returns the aggregation of registered flow services.
func (r *Registry) FlowServices() *Services {
	return r.byType(TypeFlowService)
}

// PaymentServices returns the aggregation of registered payment services.
func (r *Registry) PaymentServices() *Services {
	return r.byType(TypePaymentService)
}

func (r *Registry) byType(t ServiceType) *Services {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var infos []ServiceInfo
	for _, info := range r.services {
		if info.Type == t {
			infos = append(infos, info)
		}
	}
	return NewServices(infos)
}

// Lookup returns a registered service by id, regardless of type.
func (r *Registry) Lookup(id string) (ServiceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.services[id]
	return info, ok
}

// Subscribe returns a buffered event stream and a cancel function. Slow
// subscribers lose events rather than blocking registrations.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	events := make(chan Event, 16)
	r.subscribers[id] = events
	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if ch, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(ch)
		}
	}
	return events, cancel
}

func (r *Registry) publish(event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			r.logger.Warn("dropping event for slow subscriber", slog.String("event", string(event.Type)))
		}
	}
}
