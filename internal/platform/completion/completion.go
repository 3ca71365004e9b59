// Package completion calls the external text-generation service that drafts
// SOAP notes. Calls are stateless: every request carries the full prompt and
// nothing is remembered between calls.
package completion

import "context"

// Request is one completion call.
type Request struct {
	System string
	Prompt string
}

// Completer returns generated text for a request. Failures are reported as
// *ServiceError.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Completer interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Fixture is a demo-only Completer that always returns Text without calling
// any model. It stands in for the simulated-generation screens and must not
// be wired into the live path.
type Fixture struct {
	Text string
}

func (f Fixture) Complete(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ServiceError{Kind: KindTimeout, Message: "demo fixture cancelled", Err: err}
	}
	return f.Text, nil
}
