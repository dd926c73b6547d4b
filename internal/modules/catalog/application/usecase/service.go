package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"infiniteLeafWeb/internal/modules/catalog/application/port"
	"infiniteLeafWeb/internal/platform/upstream"
)

// ErrEmptyResponse means the upstream answered 2xx without the record we asked for.
var ErrEmptyResponse = errors.New("empty upstream response")

// Service is the thin CRUD wrapper shared by every entity. It only builds paths and
// decodes JSON; validation and business rules are the upstream API's concern.
type Service[T any] struct {
	requester port.Requester
	resource  string
	entity    string
}

// NewService binds a service to an upstream collection such as "api/cafetables".
func NewService[T any](requester port.Requester, resource, entity string) *Service[T] {
	return &Service[T]{
		requester: requester,
		resource:  strings.Trim(strings.TrimSpace(resource), "/"),
		entity:    entity,
	}
}

// Entity is the human name used in messages ("table", "menu item").
func (s *Service[T]) Entity() string { return s.entity }

// Resource is the upstream collection path.
func (s *Service[T]) Resource() string { return s.resource }

func (s *Service[T]) itemPath(id int) string {
	return s.resource + "/" + strconv.Itoa(id)
}

func (s *Service[T]) GetAll(ctx context.Context, token string) ([]T, error) {
	var items []T
	if err := s.requester.Get(ctx, token, s.resource).Decode(&items); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.entity, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Service[T]) GetByID(ctx context.Context, token string, id int) (*T, error) {
	res := s.requester.Get(ctx, token, s.itemPath(id))
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.entity, id, err)
	}
	if res.IsEmpty() {
		return nil, fmt.Errorf("get %s %d: %w", s.entity, id, upstream.ErrNotFound)
	}
	var item T
	if err := res.Decode(&item); err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.entity, id, err)
	}
	return &item, nil
}

func (s *Service[T]) Create(ctx context.Context, token string, input any) (*T, error) {
	res := s.requester.Post(ctx, token, s.resource, input)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.entity, err)
	}
	if res.IsEmpty() {
		return nil, fmt.Errorf("create %s: %w", s.entity, ErrEmptyResponse)
	}
	var item T
	if err := res.Decode(&item); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.entity, err)
	}
	return &item, nil
}

// Update returns the updated record, or nil when the upstream answers 204.
func (s *Service[T]) Update(ctx context.Context, token string, id int, input any) (*T, error) {
	res := s.requester.Put(ctx, token, s.itemPath(id), input)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", s.entity, id, err)
	}
	if res.IsEmpty() {
		return nil, nil
	}
	var item T
	if err := res.Decode(&item); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", s.entity, id, err)
	}
	return &item, nil
}

func (s *Service[T]) Delete(ctx context.Context, token string, id int) error {
	if err := s.requester.Delete(ctx, token, s.itemPath(id)).Err(); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.entity, id, err)
	}
	return nil
}
