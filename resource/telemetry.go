package resource

import (
	"github.com/yarf-framework/yarf"
)

// Telemetry is a middleware that reports every API request to a channel
type Telemetry struct {
	yarf.Middleware
	requests chan<- interface{}
}

// WithChannel sets the channel where requests are reported.
// Reports are dropped when the channel is full
func (m *Telemetry) WithChannel(requests chan<- interface{}) *Telemetry {
	m.requests = requests
	return m
}

// PreDispatch implements yarf.MiddlewareHandler
func (m *Telemetry) PreDispatch(c *yarf.Context) error {
	select {
	case m.requests <- c.Request.URL.Path:
	default:
	}
	return nil
}
