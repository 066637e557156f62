// Package delivery defines the contract every transport surface fulfils.
package delivery

import "context"

// Delivery is a long-running transport (an HTTP server) started by the
// application runner. Serve blocks until the transport stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
