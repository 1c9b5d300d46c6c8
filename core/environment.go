package core

import (
	"context"
	"net/url"
)

// Environment is the execution context the handshake runs in: the origin of the
// application requesting sign-in.
type Environment struct {
	Domain string // Host (and port) of the requesting origin
	URI    string // Full origin URI
}

type environmentKey struct{}

// WithEnvironment attaches env to ctx
func WithEnvironment(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, environmentKey{}, env)
}

// EnvironmentFrom returns the environment attached to ctx.
// The second result is false when none is attached or it lacks origin information.
func EnvironmentFrom(ctx context.Context) (Environment, bool) {
	env, ok := ctx.Value(environmentKey{}).(Environment)
	if !ok || env.Domain == "" || env.URI == "" {
		return Environment{}, false
	}
	return env, true
}

// EnvironmentFromOrigin parses an origin such as "https://app.example.com"
func EnvironmentFromOrigin(origin string) (Environment, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Environment{}, false
	}
	return Environment{
		Domain: u.Host,
		URI:    u.Scheme + "://" + u.Host,
	}, true
}
