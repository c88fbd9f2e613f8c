package queryevent

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// PlainConsoleSink returns a Subscriber that writes one human-readable
// line per event to w.
func PlainConsoleSink(w io.Writer) Subscriber {
	return func(evt Event) {
		switch evt.Kind {
		case Started:
			fmt.Fprintf(w, "[%s] started adapter=%s sql=%q\n", evt.QueryID, evt.Adapter, evt.SQL)
		case Completed:
			if evt.CacheStatus != "" {
				fmt.Fprintf(w, "[%s] completed adapter=%s rows=%d duration=%s cache=%s\n", evt.QueryID, evt.Adapter, evt.Rows, evt.Duration, evt.CacheStatus)
				return
			}
			fmt.Fprintf(w, "[%s] completed adapter=%s rows=%d duration=%s\n", evt.QueryID, evt.Adapter, evt.Rows, evt.Duration)
		case Failed:
			fmt.Fprintf(w, "[%s] error adapter=%s duration=%s err=%v\n", evt.QueryID, evt.Adapter, evt.Duration, evt.Err)
		}
	}
}

// ZapSink returns a Subscriber that logs each event as a structured
// zap entry, one level per Kind (info for started/completed, error for
// failures).
func ZapSink(logger *zap.Logger) Subscriber {
	return func(evt Event) {
		fields := []zap.Field{
			zap.String("query_id", evt.QueryID),
			zap.String("adapter", evt.Adapter),
			zap.String("sql", evt.SQL),
		}
		switch evt.Kind {
		case Started:
			logger.Info("query started", fields...)
		case Completed:
			fields = append(fields, zap.Int("rows", evt.Rows), zap.Duration("duration", evt.Duration))
			if evt.CacheStatus != "" {
				fields = append(fields, zap.String("cache_status", string(evt.CacheStatus)))
			}
			logger.Info("query completed", fields...)
		case Failed:
			fields = append(fields, zap.Duration("duration", evt.Duration), zap.Error(evt.Err))
			logger.Error("query failed", fields...)
		}
	}
}
