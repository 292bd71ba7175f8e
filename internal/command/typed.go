// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"encoding/json"
	"reflect"
)

// Run runs b and decodes its stdout as JSON into T. A decoding failure is
// dumped and returned as a *DeserializeError.
func Run[T any](ctx context.Context, b *Builder) (T, error) {
	v, _, err := runDecoded[T](ctx, b)
	return v, err
}

// RunWithValidator runs b, decodes stdout into T and passes the value through
// validate. A rejection is dumped and returned as a *ValidationError.
func RunWithValidator[T any](ctx context.Context, b *Builder, validate func(T) (T, error)) (T, error) {
	var zero T
	v, out, err := runDecoded[T](ctx, b)
	if err != nil {
		return zero, err
	}

	checked, err := validate(v)
	if err != nil {
		summary := b.Summarize()
		return zero, &ValidationError{
			Summary: summary,
			DumpDir: b.engine.dump(b, summary, out, err),
			Cause:   err,
		}
	}
	return checked, nil
}

func runDecoded[T any](ctx context.Context, b *Builder) (T, *Output, error) {
	var zero T
	out, err := b.RunRaw(ctx)
	if err != nil {
		return zero, nil, err
	}

	var v T
	if err := json.Unmarshal(out.Stdout, &v); err != nil {
		summary := b.Summarize()
		return zero, out, &DeserializeError{
			Summary: summary,
			Type:    reflect.TypeFor[T]().String(),
			DumpDir: b.engine.dump(b, summary, out, err),
			Cause:   err,
		}
	}
	return v, out, nil
}
