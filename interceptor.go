package geolingo

import (
	"context"
)

// InvokerFunc is the function type of the actual invoker. It should be called in an interceptor.
type InvokerFunc = func(ctx context.Context, sql string) error

// InterceptorFunc is the function type of an interceptor. An interceptor should implement this function to fulfill it's purpose.
type InterceptorFunc = func(ctx context.Context, sql string, invoker InvokerFunc) error

// ChainInterceptors chains interceptors into one. The first interceptor is
// the outermost.
func ChainInterceptors(interceptors ...InterceptorFunc) InterceptorFunc {
	return func(ctx context.Context, sql string, invoker InvokerFunc) error {
		return chain(ctx, interceptors, sql, invoker)
	}
}

func chain(ctx context.Context, interceptors []InterceptorFunc, sql string, invoker InvokerFunc) error {
	if len(interceptors) == 0 {
		return invoker(ctx, sql)
	}
	return interceptors[0](ctx, sql, func(ctx context.Context, sql string) error {
		return chain(ctx, interceptors[1:], sql, invoker)
	})
}
