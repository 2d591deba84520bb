package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// State is the lifecycle tag of a Resource.
type State int

const (
	// StateActive resources accept reads, writes and requests.
	StateActive State = iota
	// StateDestroyed resources have been deleted remotely and reject every
	// further mutation.
	StateDestroyed
)

func (s State) String() string {
	if s == StateDestroyed {
		return "destroyed"
	}
	return "active"
}

// Resource is a local view of one remote resource. A Resource is not safe
// for concurrent mutation.
type Resource struct {
	kind   *Kind
	client *Client
	attrs  Attributes
	state  State
}

func newResource(kind *Kind, client *Client, attrs Attributes) *Resource {
	if attrs == nil {
		attrs = make(Attributes)
	}
	return &Resource{kind: kind, client: client, attrs: attrs}
}

// Kind returns the resource's type.
func (r *Resource) Kind() *Kind { return r.kind }

// State returns the lifecycle tag.
func (r *Resource) State() State { return r.state }

// Destroyed reports whether Destroy has succeeded.
func (r *Resource) Destroyed() bool { return r.state == StateDestroyed }

// Sid returns the server-assigned identifier, empty until persisted.
func (r *Resource) Sid() string {
	sid, _ := r.attrs.Get("Sid")
	return sid
}

// Persisted reports whether the resource was created on or fetched from the
// server.
func (r *Resource) Persisted() bool { return r.Sid() != "" }

// Get returns the value of key, given in either naming convention.
func (r *Resource) Get(key string) (string, bool) { return r.attrs.Get(key) }

// Set stores value under key. Destroyed resources reject writes.
func (r *Resource) Set(key string, value any) error {
	if err := r.guard("set"); err != nil {
		return err
	}
	r.attrs.Set(key, value)
	return nil
}

// Attributes returns a copy of the attribute set.
func (r *Resource) Attributes() Attributes { return r.attrs.Clone() }

// Is reports whether the status attribute begins with term, ignoring case
// and treating "_" and "-" alike, so Is("in_progress") holds for
// status "in-progress".
func (r *Resource) Is(term string) bool {
	status, ok := r.attrs.Get("Status")
	if !ok {
		return false
	}
	return strings.HasPrefix(normalizeStatus(status), normalizeStatus(term))
}

// Call invokes an accessor by name: "field=" writes, "state?" tests the
// status, anything else reads. Names not declared by the kind are resolved
// on first use and cached for the kind.
func (r *Resource) Call(ctx context.Context, name string, args ...any) (any, error) {
	acc, err := r.kind.accessors.resolve(r, name)
	if err != nil {
		return nil, err
	}
	switch acc.typ {
	case writerAccessor:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s#%s: wrong number of arguments (given %d, expected 1)", r.kind.Name, name, len(args))
		}
		if r.kind.IsMutable(acc.field) && r.Persisted() {
			return args[0], r.Update(ctx, map[string]any{acc.field: args[0]})
		}
		return args[0], r.Set(acc.field, args[0])
	case predicateAccessor:
		return r.Is(acc.field), nil
	default:
		if v, ok := r.attrs.Get(acc.field); ok {
			return v, nil
		}
		return nil, nil
	}
}

// Path is the member path of a persisted resource.
func (r *Resource) Path() string {
	return r.kind.MemberPath(r.client.AccountSID(), r.Sid())
}

// serverAssigned fields are owned by the API and never sent back on update.
var serverAssigned = map[string]bool{
	"Sid":         true,
	"AccountSid":  true,
	"Uri":         true,
	"DateCreated": true,
	"DateUpdated": true,
}

// Save creates the resource if it is not yet persisted, otherwise sends its
// writable attributes as an update.
func (r *Resource) Save(ctx context.Context) error {
	if err := r.guard("save"); err != nil {
		return err
	}
	if r.Persisted() {
		return r.send(ctx, r.kind.UpdateMethod, r.Path(), attrsToParams(r.attrs, serverAssigned), r.attrs)
	}
	return r.send(ctx, http.MethodPost, r.kind.CollectionPath(r.client.AccountSID()), attrsToParams(r.attrs, nil), r.attrs)
}

// Update sends attrs to the server. Only on success are they applied
// locally and the response merged; a failed update leaves the resource as
// it was. The SID is never changed locally.
func (r *Resource) Update(ctx context.Context, attrs map[string]any) error {
	if err := r.guard("update"); err != nil {
		return err
	}
	if !r.Persisted() {
		return &PreconditionError{Kind: r.kind.Name, Op: "update", Err: ErrNotPersisted}
	}
	path := r.Path()
	next := r.attrs.Clone()
	for k, v := range attrs {
		if Camelize(k) == "Sid" {
			continue
		}
		next.Set(k, v)
	}
	if err := r.send(ctx, r.kind.UpdateMethod, path, encodeParams(attrs), next); err != nil {
		return err
	}
	r.attrs = next
	return nil
}

// Destroy deletes the resource. On success the resource becomes immutable.
func (r *Resource) Destroy(ctx context.Context) error {
	if err := r.guard("destroy"); err != nil {
		return err
	}
	if !r.Persisted() {
		return &PreconditionError{Kind: r.kind.Name, Op: "destroy", Err: ErrNotPersisted}
	}
	res, err := r.client.Delete(ctx, r.Path(), nil)
	if err != nil {
		return err
	}
	if err := handleResponse(res, r.attrs); err != nil {
		return err
	}
	r.state = StateDestroyed
	return nil
}

// send issues the request and merges a successful response into dst.
func (r *Resource) send(ctx context.Context, method, path string, params url.Values, dst Attributes) error {
	var (
		res *Response
		err error
	)
	if method == http.MethodPut {
		res, err = r.client.Put(ctx, path, params)
	} else {
		res, err = r.client.Post(ctx, path, params)
	}
	if err != nil {
		return err
	}
	return handleResponse(res, dst)
}

func (r *Resource) guard(op string) error {
	if r.state == StateDestroyed {
		return &PreconditionError{Kind: r.kind.Name, Op: op, Err: ErrDestroyed}
	}
	return nil
}

func attrsToParams(a Attributes, skip map[string]bool) url.Values {
	params := make(url.Values, len(a))
	for k, v := range a {
		if skip[k] {
			continue
		}
		params.Set(k, v)
	}
	return params
}
