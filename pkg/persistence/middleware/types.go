package middleware

import "github.com/aretw0/mbt/pkg/ports"

// Middleware allows wrapping a SequenceStore to add behavior.
type Middleware func(ports.SequenceStore) ports.SequenceStore

// Chain wraps store with mws. The first middleware is the outermost: it sees a
// sequence first on Save and last on Load.
func Chain(store ports.SequenceStore, mws ...Middleware) ports.SequenceStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
