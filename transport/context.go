package transport

import "context"

type ctxKey int

const retriedKey ctxKey = iota

// markRetried flags a request context as having spent its one
// refresh-and-retry cycle.
func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey, true)
}

func wasRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey).(bool)
	return retried
}
