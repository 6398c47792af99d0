/*
Package resilience provides the circuit breaker used by API clients of the
desktop server.

A breaker sits in front of every call a client makes. When the server keeps
failing, the breaker opens and calls fail fast with ErrCircuitOpen until a
cooldown passes; then a few probe calls decide whether to close it again.
Which errors count as failures is up to Settings.IsFailure, so a client can
treat a 404 as an answer rather than an outage.

# Usage

	breaker := resilience.New("desktop-api", resilience.Settings{
		Probes:   2,
		Cooldown: 10 * time.Second,
		Trip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	snap, err := resilience.Do(ctx, breaker, func(ctx context.Context) (*types.Snapshot, error) {
		return fetchSnapshot(ctx)
	})

# States

	Closed --[Trip]-> Open --[Cooldown]-> Half-Open --[Probes successes]-> Closed
	                                          |
	                                      [failure]
	                                          v
	                                        Open
*/
package resilience
