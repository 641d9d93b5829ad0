package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// mapTransportError classifies a failure that happened before any response
// was received. Cancellation by the caller is returned as is.
func mapTransportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransientNetwork, op, err)
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case code == http.StatusPreconditionFailed, code == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrStaleBase, body)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrTransientNetwork, code, body)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrProtocol, code, body)
	}
}
