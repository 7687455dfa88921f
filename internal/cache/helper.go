package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
	jsoniter "github.com/json-iterator/go"
)

// UnmarshalCacheValue converts a cached value back to *T. In-memory caches
// hold *T directly; Redis returns the JSON encoding.
func UnmarshalCacheValue[T any](value interface{}) (*T, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *T:
		return v, true
	case []byte:
		var out T
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(v, &out); err != nil {
			return nil, false
		}
		return &out, true
	case string:
		var out T
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(v, &out); err != nil {
			return nil, false
		}
		return &out, true
	default:
		return nil, false
	}
}

// StartCacheSpan creates a new span for a cache operation.
// Returns nil if the request is not traced.
func StartCacheSpan(ctx context.Context, cache, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.SpanFromContext(ctx) == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "cache."+cache+"."+operation)
	span.Description = "cache." + cache + "." + operation
	span.Op = "db.cache"
	span.SetData("cache", cache)
	span.SetData("operation", operation)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span
}

// FinishSpan safely finishes a span, handling nil spans
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

// SetSpanSuccess marks a span as successful
func SetSpanSuccess(span *sentry.Span) {
	if span != nil {
		span.Status = sentry.SpanStatusOK
	}
}
