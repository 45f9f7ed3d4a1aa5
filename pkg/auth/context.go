package auth

import "context"

type rejectionKey struct{}

// WithRejection records why a presented bearer token was refused. The request
// continues anonymously; operations that need a caller report err instead of a
// plain missing-token error.
func WithRejection(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return context.WithValue(ctx, rejectionKey{}, err)
}

// RejectionFromContext returns the error recorded by WithRejection, if any.
func RejectionFromContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	err, _ := ctx.Value(rejectionKey{}).(error)
	return err
}
