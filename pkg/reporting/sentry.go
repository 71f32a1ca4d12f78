package reporting

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// sentryFlushTimeout bounds how long a fault report may block the caller.
const sentryFlushTimeout = 5 * time.Second

// InitSentry initializes the sentry client from SENTRY_DSN. It reports
// whether sentry is enabled; an unset DSN is not an error.
func InitSentry(release string) (bool, error) {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return true, nil
}

// SentryHandler returns an engine error handler that reports faults on a
// cloned hub tagged with the match and the faulting tick.
func SentryHandler(matchID string) engine.ErrorHandler {
	return func(err error, ws world.WorldState) {
		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("match", matchID)
			scope.SetTag("tick", fmt.Sprintf("%d", ws.Tick))
			scope.SetTag("phase", string(ws.Rally.Phase))
			scope.SetExtra("seed", ws.Seed)
			scope.SetExtra("score", fmt.Sprintf("%d-%d", ws.Rally.HomeScore, ws.Rally.AwayScore))
		})
		hub.CaptureException(err)
		hub.Flush(sentryFlushTimeout)
	}
}

// Chain calls each non-nil handler in order.
func Chain(handlers ...engine.ErrorHandler) engine.ErrorHandler {
	return func(err error, ws world.WorldState) {
		for _, h := range handlers {
			if h != nil {
				h(err, ws)
			}
		}
	}
}

// ErrorHandler returns a handler that records faults in rl.
func (rl *RallyLogger) ErrorHandler() engine.ErrorHandler {
	return func(err error, ws world.WorldState) {
		rl.LogError(fmt.Sprintf("engine fault at tick %d", ws.Tick), err)
	}
}
