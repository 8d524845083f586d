package tracking

import "context"

// Environment provee el contexto del cliente (página actual y user agent).
// Fuera de un navegador ambos valores son "".
type Environment interface {
	PageURL() string
	UserAgent() string
}

type StaticEnvironment struct {
	URL   string
	Agent string
}

func (e StaticEnvironment) PageURL() string   { return e.URL }
func (e StaticEnvironment) UserAgent() string { return e.Agent }

type envCtxKey struct{}

// WithEnvironment asocia un Environment al ctx; Track lo usa para enriquecer eventos.
func WithEnvironment(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, envCtxKey{}, env)
}

func EnvironmentFrom(ctx context.Context) (Environment, bool) {
	if ctx == nil {
		return nil, false
	}
	env, ok := ctx.Value(envCtxKey{}).(Environment)
	if !ok || env == nil {
		return nil, false
	}
	return env, true
}
