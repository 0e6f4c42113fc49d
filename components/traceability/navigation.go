package traceability

import (
	"strings"
	"sync"
)

// NextView maps a scanned code to the view it opens. Every string maps to
// exactly one detail view; CUSTOMER wins over ADMIN when both appear.
func NextView(code string) View {
	switch {
	case strings.Contains(code, "CUSTOMER"):
		return ViewCustomer
	case strings.Contains(code, "ADMIN"):
		return ViewAdmin
	default:
		return ViewTraceability
	}
}

// Navigator is the scanner -> detail -> scanner state machine.
type Navigator struct {
	mu    sync.RWMutex
	state NavigationState
}

// NewNavigator starts in the scanner view with no product.
func NewNavigator() *Navigator {
	return &Navigator{state: NavigationState{View: ViewScanner}}
}

// OnScan moves to the view selected by the code and remembers the code.
func (n *Navigator) OnScan(code string) NavigationState {
	id := code
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = NavigationState{View: NextView(code), ProductID: &id}
	return n.snapshot()
}

// OnBack returns to the scanner and clears the product id.
func (n *Navigator) OnBack() NavigationState {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = NavigationState{View: ViewScanner}
	return n.snapshot()
}

// State returns a copy of the current state.
func (n *Navigator) State() NavigationState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.snapshot()
}

func (n *Navigator) snapshot() NavigationState {
	out := NavigationState{View: n.state.View}
	if n.state.ProductID != nil {
		id := *n.state.ProductID
		out.ProductID = &id
	}
	return out
}
