package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
)

// collectionOverrides maps kind names whose collection path does not follow
// plain pluralization. Kinds needing a new exception are added here.
var collectionOverrides = map[string]string{
	"SMS": "SMS/Messages",
}

// Kind describes one resource type: its name, the fields it declares and
// where its collection lives. All instances of a kind share one accessor
// registry.
type Kind struct {
	// Name is the singular type name, e.g. "IncomingPhoneNumber".
	Name string
	// Fields are declared attribute names, in local form.
	Fields []string
	// Mutable are the fields whose writers persist through Update.
	Mutable []string
	// Collection overrides the derived collection path segment.
	Collection string
	// ListKey overrides the key holding the array in list responses.
	ListKey string
	// SidPrefix is the two-letter prefix of server-assigned SIDs.
	SidPrefix string
	// Root kinds live at /Accounts rather than under an account.
	Root bool
	// UpdateMethod is the verb used by Update, POST when empty.
	UpdateMethod string

	accessors *accessorRegistry
	mutable   map[string]bool
}

var (
	kindsMu sync.RWMutex
	kinds   = map[string]*Kind{}
)

// Declare registers a kind, resolving its collection path and pre-registering
// readers for its declared fields. Declaring a name twice panics.
func Declare(k Kind) *Kind {
	kind := &k
	if kind.Collection == "" {
		if override, ok := collectionOverrides[kind.Name]; ok {
			kind.Collection = override
		} else {
			kind.Collection = inflection.Plural(kind.Name)
		}
	}
	if kind.ListKey == "" {
		kind.ListKey = Underscore(strings.ReplaceAll(kind.Collection, "/", ""))
	}
	if kind.UpdateMethod == "" {
		kind.UpdateMethod = http.MethodPost
	}
	kind.mutable = make(map[string]bool, len(kind.Mutable))
	for _, f := range kind.Mutable {
		kind.mutable[Camelize(f)] = true
	}
	kind.accessors = newAccessorRegistry(kind)
	for _, f := range kind.Fields {
		kind.accessors.declare(f)
	}
	for _, f := range kind.Mutable {
		kind.accessors.declare(f + "=")
	}

	kindsMu.Lock()
	defer kindsMu.Unlock()
	key := strings.ToLower(kind.Name)
	if _, dup := kinds[key]; dup {
		panic(fmt.Sprintf("twilio: kind %s declared twice", kind.Name))
	}
	kinds[key] = kind
	return kind
}

// LookupKind finds a declared kind by type name or collection name in either
// naming convention ("incoming_phone_number", "IncomingPhoneNumbers", ...).
func LookupKind(name string) (*Kind, error) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	key := strings.ToLower(Camelize(name))
	if k, ok := kinds[key]; ok {
		return k, nil
	}
	for _, k := range kinds {
		if strings.EqualFold(k.Collection, Camelize(name)) || strings.EqualFold(k.ListKey, name) {
			return k, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

// Kinds returns every declared kind sorted by name.
func Kinds() []*Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]*Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (k *Kind) String() string { return k.Name }

// IsMutable reports whether writes to field are persisted by its writer.
func (k *Kind) IsMutable(field string) bool { return k.mutable[Camelize(field)] }

func (k *Kind) basePath(accountSID string) string {
	if k.Root {
		return "/" + k.Collection
	}
	return "/Accounts/" + accountSID + "/" + k.Collection
}

// CollectionPath is the path of the kind's collection, relative to the
// versioned API root.
func (k *Kind) CollectionPath(accountSID string) string {
	return k.basePath(accountSID) + ".json"
}

// MemberPath is the path of one resource of the kind.
func (k *Kind) MemberPath(accountSID, id string) string {
	return k.basePath(accountSID) + "/" + url.PathEscape(id) + ".json"
}

// New builds an unsaved resource bound to the default client.
func (k *Kind) New(attrs map[string]any) (*Resource, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Collection(k).New(attrs), nil
}

// Find fetches a resource by SID with the default client.
func (k *Kind) Find(ctx context.Context, id string) (*Resource, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Collection(k).Find(ctx, id)
}

// All lists resources with the default client.
func (k *Kind) All(ctx context.Context, params map[string]any) ([]*Resource, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Collection(k).All(ctx, params)
}

// Count counts resources with the default client.
func (k *Kind) Count(ctx context.Context, params map[string]any) (int, error) {
	c, err := Default()
	if err != nil {
		return 0, err
	}
	return c.Collection(k).Count(ctx, params)
}

// Create creates a resource with the default client.
func (k *Kind) Create(ctx context.Context, attrs map[string]any) (*Resource, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Collection(k).Create(ctx, attrs)
}
