package observability

import "github.com/aretw0/nody/pkg/domain"

// Compose merges several hook sets. Each callback runs the non-nil callbacks
// of every set, in argument order.
func Compose(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnNodeActivated = chain(out.OnNodeActivated, h.OnNodeActivated)
		out.OnNodeDeactivated = chain(out.OnNodeDeactivated, h.OnNodeDeactivated)
		out.OnConnected = chain(out.OnConnected, h.OnConnected)
		out.OnDisconnected = chain(out.OnDisconnected, h.OnDisconnected)
		out.OnSubGraphChanged = chain(out.OnSubGraphChanged, h.OnSubGraphChanged)
		out.OnLoopDetected = chain(out.OnLoopDetected, h.OnLoopDetected)
	}
	return out
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
