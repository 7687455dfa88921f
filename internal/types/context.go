package types

import "context"

// ContextKey is the type of every value this service stores on a context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxCampusID  ContextKey = "ctx_campus_id"
	CtxDBTx      ContextKey = "ctx_db_tx"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func GetCampusID(ctx context.Context) string {
	if campusID, ok := ctx.Value(CtxCampusID).(string); ok {
		return campusID
	}
	return ""
}

func SetCampusID(ctx context.Context, campusID string) context.Context {
	return context.WithValue(ctx, CtxCampusID, campusID)
}
