package twilio

import (
	"context"
	"fmt"

	"github.com/spf13/cast"
)

// Collection is a Kind bound to a Client.
type Collection struct {
	kind   *Kind
	client *Client
}

// Kind returns the collection's resource type.
func (c *Collection) Kind() *Kind { return c.kind }

// Path is the collection path for the client's account.
func (c *Collection) Path() string { return c.kind.CollectionPath(c.client.AccountSID()) }

// New builds an unsaved resource from attrs, which may use either naming
// convention.
func (c *Collection) New(attrs map[string]any) *Resource {
	return newResource(c.kind, c.client, NewAttributes(attrs))
}

// Find fetches one resource by SID. Any non-2xx response yields a nil
// resource and a nil error: a missing SID is an expected outcome of a
// lookup. Transport and decoding failures are still returned.
func (c *Collection) Find(ctx context.Context, id string) (*Resource, error) {
	res, err := c.client.Get(ctx, c.kind.MemberPath(c.client.AccountSID(), id), nil)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, nil
	}
	fields, err := res.Fields()
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c.kind.Name, id, err)
	}
	r := newResource(c.kind, c.client, nil)
	r.attrs.Merge(fields)
	return r, nil
}

// Create builds a resource from attrs and saves it with a single POST. The
// resource is returned even when saving fails so callers can inspect what
// was sent.
func (c *Collection) Create(ctx context.Context, attrs map[string]any) (*Resource, error) {
	r := c.New(attrs)
	if err := r.Save(ctx); err != nil {
		return r, err
	}
	return r, nil
}

// All lists the collection. params are filters and paging options in either
// naming convention, e.g. {"friendly_name": "example", "page": 5}.
func (c *Collection) All(ctx context.Context, params map[string]any) ([]*Resource, error) {
	fields, err := c.list(ctx, params)
	if err != nil {
		return nil, err
	}
	items, err := c.items(fields)
	if err != nil {
		return nil, err
	}
	out := make([]*Resource, 0, len(items))
	for _, item := range items {
		r := newResource(c.kind, c.client, nil)
		r.attrs.Merge(item)
		out = append(out, r)
	}
	return out, nil
}

// Count returns the size of the collection under params, preferring the
// "total" reported by the API over the length of the returned page.
func (c *Collection) Count(ctx context.Context, params map[string]any) (int, error) {
	fields, err := c.list(ctx, params)
	if err != nil {
		return 0, err
	}
	if total, ok := fields["total"]; ok {
		if s, ok := stringify(total); ok {
			n, err := cast.ToIntE(s)
			if err != nil {
				return 0, fmt.Errorf("count %s: total %q: %w", c.kind.Name, s, err)
			}
			return n, nil
		}
	}
	items, err := c.items(fields)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (c *Collection) list(ctx context.Context, params map[string]any) (map[string]any, error) {
	res, err := c.client.Get(ctx, c.Path(), encodeParams(params))
	if err != nil {
		return nil, err
	}
	fields, err := res.Fields()
	if res.Failed() {
		return nil, newAPIError(res.StatusCode, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.kind.Name, err)
	}
	return fields, nil
}

func (c *Collection) items(fields map[string]any) ([]map[string]any, error) {
	raw, ok := fields[c.kind.ListKey]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("list %s: %q is %T, not an array", c.kind.Name, c.kind.ListKey, raw)
	}
	out := make([]map[string]any, 0, len(list))
	for i, v := range list {
		item, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("list %s: item %d is %T, not an object", c.kind.Name, i, v)
		}
		out = append(out, item)
	}
	return out, nil
}
