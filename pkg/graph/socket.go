package graph

import (
	"github.com/aretw0/nody/pkg/domain"
)

// Socket is a typed connection point on a node.
type Socket struct {
	ID        string
	NodeID    string
	Name      string
	Direction domain.Direction
	Policy    domain.ConnectionPolicy

	connections []*Connection
}

// IsConnected reports whether the socket holds at least one connection.
func (s *Socket) IsConnected() bool {
	return s != nil && len(s.connections) > 0
}

// FirstConnection returns the oldest connection of the socket, or nil.
func (s *Socket) FirstConnection() *Connection {
	if !s.IsConnected() {
		return nil
	}
	return s.connections[0]
}

// ConnectionCount returns the number of connections held by the socket.
func (s *Socket) ConnectionCount() int {
	if s == nil {
		return 0
	}
	return len(s.connections)
}

// Connections returns a copy of the socket's connections in creation order.
func (s *Socket) Connections() []*Connection {
	if s == nil {
		return nil
	}
	out := make([]*Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

func (s *Socket) has(c *Connection) bool {
	for _, existing := range s.connections {
		if existing == c {
			return true
		}
	}
	return false
}

func (s *Socket) remove(c *Connection) bool {
	for i, existing := range s.connections {
		if existing == c {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			return true
		}
	}
	return false
}

// Connection is a directed edge from an output socket to an input socket.
type Connection struct {
	ID             string
	OutputNodeID   string
	OutputSocketID string
	InputNodeID    string
	InputSocketID  string
}
