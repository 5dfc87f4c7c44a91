/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span whose ids are ULIDs from internal/shared/id.
A caller may continue an existing trace by sending X-Trace-ID (and
optionally X-Span-ID); the ids in effect are echoed back in the response
headers. Finished spans are handed to a buffered collector that logs them
through zap, so tracing never blocks a request.

# Usage

	tracer := tracing.New("render", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
