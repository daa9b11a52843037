package util

import (
	"context"
)

type key string

const (
	connectionIDKey = key("connection-id")
	remoteAddrKey   = key("remote-addr")
)

// WithConnectionID returns a context carrying the given connection id.
// It will generate a new id if the provided one is empty.
func WithConnectionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return context.WithValue(ctx, connectionIDKey, NewConnectionID())
	}

	return context.WithValue(ctx, connectionIDKey, id)
}

// GetConnectionID returns the connection id from ctx if available.
func GetConnectionID(ctx context.Context) string {
	id, _ := ctx.Value(connectionIDKey).(string)
	return id
}

// WithRemoteAddr returns a context carrying the peer address of a connection.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey, addr)
}

// GetRemoteAddr returns the peer address from ctx if available.
func GetRemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey).(string)
	return addr
}
