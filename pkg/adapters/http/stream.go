package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/nody/pkg/domain"
)

// StreamManager handles active SSE connections, keyed by controller name.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(name string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[name]; !ok {
		sm.subscribers[name] = make(map[chan<- string]struct{})
	}
	sm.subscribers[name][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[name]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, name)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(name string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[name]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "controller", name)
			}
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every traversal event of the
// controller name as JSON. Wiring events are not streamed.
func (sm *StreamManager) Hooks(name string) domain.LifecycleHooks {
	send := func(v any) {
		b, err := json.Marshal(v)
		if err != nil {
			sm.logger.Warn("SSE: event encode failed", "controller", name, "error", err)
			return
		}
		sm.Broadcast(name, string(b))
	}
	return domain.LifecycleHooks{
		OnNodeActivated:   func(e *domain.NodeEvent) { send(e) },
		OnNodeDeactivated: func(e *domain.NodeEvent) { send(e) },
		OnSubGraphChanged: func(e *domain.SubGraphEvent) { send(e) },
		OnLoopDetected:    func(e *domain.LoopEvent) { send(e) },
	}
}
