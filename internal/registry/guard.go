package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// invoker runs a tool. result is always well typed: on failure it holds the
// sentinel and err carries the cause for diagnostics.
type invoker func(ctx context.Context, args Args) (result any, err error)

// bind wraps fn so that argument errors, operation errors and panics all
// collapse into the sentinel produced by fallback.
func bind[T any](d Descriptor, fallback func(error) T, fn func(context.Context, Args) (T, error)) invoker {
	return func(ctx context.Context, args Args) (result any, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = mcperr.Newf(mcperr.Internal, "%s: %v", d.Name, p)
				result = fallback(err)
			}
		}()
		if err := args.require(d.Params); err != nil {
			return fallback(err), err
		}
		v, err := fn(ctx, args)
		if err != nil {
			return fallback(err), err
		}
		return v, nil
	}
}

func textSentinel(err error) string { return "Error: " + err.Error() }

func countSentinel(error) int { return -1 }

func listSentinel[E any](error) []E { return []E{} }

// Args is a decoded tool argument object. Accessors coerce JSON numbers,
// numeric strings and "true"/"false" to the declared primitive type.
type Args map[string]any

func (a Args) require(params []Param) error {
	for _, p := range params {
		if !p.Required {
			continue
		}
		if v, ok := a[p.Name]; !ok || v == nil {
			return mcperr.Newf(mcperr.Validation, "%s is required", p.Name)
		}
	}
	return nil
}

// String returns the argument as text; absent is "".
func (a Args) String(name string) (string, error) {
	s, err := cast.ToStringE(a[name])
	if err != nil {
		return "", argError(name, "a string", err)
	}
	return s, nil
}

// Int returns the argument as an integer; absent is 0.
func (a Args) Int(name string) (int, error) {
	v := a[name]
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, argError(name, "an integer", err)
	}
	if f, ok := v.(float64); ok && f != float64(n) {
		return 0, argError(name, "an integer", fmt.Errorf("got %v", f))
	}
	return n, nil
}

// Bool returns the argument as a boolean; absent is false.
func (a Args) Bool(name string) (bool, error) {
	b, err := cast.ToBoolE(a[name])
	if err != nil {
		return false, argError(name, "a boolean", err)
	}
	return b, nil
}

func argError(name, want string, err error) error {
	return mcperr.Wrapf(mcperr.Validation, err, "%s must be %s", name, want)
}
