package bootstrap

import (
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"rug/internal/metrics"
	"rug/internal/neutron"
	"rug/pkg/logging"
)

// newListingPolicy builds the retry policy around the router listing call.
//
// Transient failures are retried forever with a delay that starts at initial
// and doubles up to maxDelay. Authorization failures abort immediately.
func newListingPolicy(initial, maxDelay time.Duration, onRetry func(time.Duration, error)) retrypolicy.RetryPolicy[[]neutron.Router] {
	return retrypolicy.NewBuilder[[]neutron.Router]().
		WithMaxRetries(-1).
		WithBackoff(initial, maxDelay).
		AbortIf(func(_ []neutron.Router, err error) bool {
			return neutron.IsAuthError(err)
		}).
		OnRetryScheduled(func(e failsafe.ExecutionScheduledEvent[[]neutron.Router]) {
			metrics.BootstrapRetries.Inc()
			logging.Warn(subsystem, "Could not fetch routers from neutron, sleeping %s before retrying: %v",
				e.Delay, e.LastError())
			if onRetry != nil {
				onRetry(e.Delay, e.LastError())
			}
		}).
		Build()
}
