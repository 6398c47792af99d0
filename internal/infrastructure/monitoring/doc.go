/*
Package monitoring provides Prometheus metrics for the desktop service.

Each Metrics value owns a private registry, which keeps tests and embedded
servers from colliding on metric names.

# Metrics

  - HTTP requests (count, latency, sizes) labelled by route template
  - window records by state, published after every desktop mutation
  - popout protocol messages by type and outcome
  - WebSocket connections per channel (stream, popout)

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
