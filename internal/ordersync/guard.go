package ordersync

// Guard counts workflow entries within one order-save cycle. Only the
// first entry proceeds. A Guard belongs to a single request and is not
// safe for concurrent use.
type Guard struct {
	attempts int
}

// NewGuard returns a guard for a new cycle.
func NewGuard() *Guard {
	return &Guard{}
}

// Enter records an entry and reports whether it is the first one.
func (g *Guard) Enter() bool {
	g.attempts++
	return g.attempts == 1
}

// Attempts returns how many times Enter was called.
func (g *Guard) Attempts() int {
	return g.attempts
}
