package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// Resource is the REST binding of one collection: GET/POST /{name},
// PUT/DELETE /{name}/{id}.
type Resource[T any, P any] struct {
	c    *HTTPClient
	name string
}

func NewResource[T any, P any](c *HTTPClient, name string) *Resource[T, P] {
	return &Resource[T, P]{c: c, name: name}
}

func (r *Resource[T, P]) Name() string { return r.name }

// List accepts both a bare JSON array and an {"items": [...]} envelope.
func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := r.c.doJSON(ctx, http.MethodGet, r.name, r.c.sessionToken(), nil, &raw); err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if len(raw) == 0 {
		return items, nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &Error{Kind: KindUnknown, Message: "malformed " + r.name + " listing", Err: err}
		}
		return items, nil
	}

	var envelope struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "malformed " + r.name + " listing", Err: err}
	}
	if envelope.Items != nil {
		items = envelope.Items
	}
	return items, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var out T
	err := r.c.doJSON(ctx, http.MethodPost, r.name, r.c.sessionToken(), payload, &out)
	return out, err
}

func (r *Resource[T, P]) Update(ctx context.Context, id int64, payload P) (T, error) {
	var out T
	err := r.c.doJSON(ctx, http.MethodPut, r.itemPath(id), r.c.sessionToken(), payload, &out)
	return out, err
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	return r.c.doJSON(ctx, http.MethodDelete, r.itemPath(id), r.c.sessionToken(), nil, nil)
}

func (r *Resource[T, P]) itemPath(id int64) string {
	return r.name + "/" + strconv.FormatInt(id, 10)
}
