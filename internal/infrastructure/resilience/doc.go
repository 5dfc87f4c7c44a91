/*
Package resilience provides a circuit breaker for calls to the remote
automation endpoint.

# Overview

Starting a browser session is the most expensive call the service makes. When
the endpoint is down every request would otherwise pay the full connect
timeout; the breaker trips after a run of failed creations and fails fast
until the open timeout elapses.

# Usage

	breaker := resilience.New("webdriver-session", resilience.Settings{
		Timeout:     10 * time.Second,
		ReadyToTrip: resilience.ConsecutiveFailures(5),
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	sess, err := resilience.Call(breaker, func() (*webdriver.Session, error) {
		return client.NewSession(ctx, caps)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
