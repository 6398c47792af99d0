/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span. Trace and span ids are prefixed ULIDs
(see shared/id), propagated through the X-Trace-ID and X-Span-ID headers,
and finished spans are logged through zap by a buffered background
collector.

	tracer := tracing.New("webdesk", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "catalog.load")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
