package domain

// Direction tells whether a socket receives or emits connections.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// ConnectionPolicy bounds the number of connections a socket may hold.
type ConnectionPolicy string

const (
	// Override keeps at most one connection; connecting again severs the previous one.
	Override ConnectionPolicy = "override"
	// Multiple accepts any number of connections.
	Multiple ConnectionPolicy = "multiple"
)

// Allows reports whether a socket with this policy may hold n connections.
func (p ConnectionPolicy) Allows(n int) bool {
	if p == Override {
		return n <= 1
	}
	return true
}
