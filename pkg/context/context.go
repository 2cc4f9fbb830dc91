package context

import "context"

type ContextKey string

var (
	RequestIDKey      = ContextKey("X-Request-Id")
	MethodKey         = ContextKey("X-Method")
	RouteKey          = ContextKey("X-Route")
	RemoteIPKey       = ContextKey("X-Remote-Ip")
	ContractNumberKey = ContextKey("X-Contract-Number")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string {
	value, ok := ctx.Value(MethodKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string {
	value, ok := ctx.Value(RouteKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, RemoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	value, ok := ctx.Value(RemoteIPKey).(string)
	if !ok {
		return ""
	}
	return value
}

// SetContractNumber scopes log/trace context to the contract a request is
// operating on.
func SetContractNumber(ctx context.Context, contractNumber string) context.Context {
	return context.WithValue(ctx, ContractNumberKey, contractNumber)
}

func GetContractNumber(ctx context.Context) string {
	value, ok := ctx.Value(ContractNumberKey).(string)
	if !ok {
		return ""
	}
	return value
}
