package port

import (
	"context"

	"infiniteLeafWeb/internal/platform/upstream"
)

// Requester is the upstream request proxy as seen by the entity services.
type Requester interface {
	Get(ctx context.Context, token, path string) upstream.Result
	Post(ctx context.Context, token, path string, body any) upstream.Result
	Put(ctx context.Context, token, path string, body any) upstream.Result
	Delete(ctx context.Context, token, path string) upstream.Result
}

var _ Requester = (*upstream.Proxy)(nil)
