package distill

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/learn/pkg/core"
)

// complete runs one bounded completion call. Every failure, including the
// deadline, surfaces as a *core.NetworkError.
func complete(ctx context.Context, c core.Completer, cfg config, prompt string) (string, error) {
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	out, err := c.Complete(ctx, prompt)
	if err == nil {
		return out, nil
	}
	if core.IsNetwork(err) {
		return "", err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("no response within %s: %w", cfg.timeout, err)
	}
	return "", &core.NetworkError{Err: err}
}
