package port

import (
	"context"

	"infiniteLeafWeb/internal/platform/upstream"
)

// LoginRequester posts credentials to the upstream auth endpoint.
type LoginRequester interface {
	Post(ctx context.Context, token, path string, body any) upstream.Result
}
