package twilio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gadget is a kind used only by these tests, so its accessor cache starts
// empty apart from declared fields.
var gadget = Declare(Kind{
	Name:      "Gadget",
	SidPrefix: "GD",
	Fields:    []string{"sid", "status"},
})

func newGadget(attrs map[string]any) *Resource {
	return newResource(gadget, nil, NewAttributes(attrs))
}

func TestCallReader(t *testing.T) {
	r := newGadget(map[string]any{"friendly_name": "barrington"})

	v, err := r.Call(context.Background(), "friendly_name")
	require.NoError(t, err)
	assert.Equal(t, "barrington", v)

	v, err = r.Call(context.Background(), "FriendlyName")
	require.NoError(t, err)
	assert.Equal(t, "barrington", v)

	assert.Contains(t, gadget.Accessors(), "FriendlyName")
}

func TestCallUnknownName(t *testing.T) {
	r := newGadget(nil)

	_, err := r.Call(context.Background(), "no_such_field")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSuchMethod))

	var nsm *NoSuchMethodError
	require.True(t, errors.As(err, &nsm))
	assert.Equal(t, "Gadget", nsm.Kind)
	assert.NotContains(t, gadget.Accessors(), "NoSuchField")
}

func TestCallReaderIsCachedPerKind(t *testing.T) {
	first := newGadget(map[string]any{"caller_name": "Ada"})
	_, err := first.Call(context.Background(), "caller_name")
	require.NoError(t, err)

	// Another instance without the field reuses the cached reader.
	second := newGadget(nil)
	v, err := second.Call(context.Background(), "caller_name")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCallWriter(t *testing.T) {
	r := newGadget(nil)

	v, err := r.Call(context.Background(), "voice_url=", "http://example.com/twiml.xml")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/twiml.xml", v)

	got, ok := r.Get("VoiceUrl")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/twiml.xml", got)
	assert.Contains(t, gadget.Accessors(), "VoiceUrl=")

	_, err = r.Call(context.Background(), "voice_url=")
	assert.ErrorContains(t, err, "wrong number of arguments")
}

func TestCallWriterOnDestroyedResource(t *testing.T) {
	r := newGadget(nil)
	r.state = StateDestroyed

	_, err := r.Call(context.Background(), "friendly_name=", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDestroyed))
	assert.EqualError(t, err, "Gadget has already been destroyed")
}

func TestCallPredicate(t *testing.T) {
	tests := []struct {
		status string
		name   string
		want   bool
	}{
		{"in-progress", "in_progress?", true},
		{"In-Progress", "in_progress?", true},
		{"completed", "in_progress?", false},
		{"completed", "complete?", true},
		{"queued", "QUEUED?", true},
		{"", "queued?", false},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.name, func(t *testing.T) {
			r := newGadget(map[string]any{"status": tt.status})
			v, err := r.Call(context.Background(), tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestPredicateWithoutStatus(t *testing.T) {
	r := newGadget(nil)
	assert.False(t, r.Is("queued"))
}

func TestDeclaredFieldsAreRegistered(t *testing.T) {
	names := IncomingPhoneNumber.Accessors()
	assert.Contains(t, names, "VoiceFallbackUrl")
	assert.Contains(t, names, "FriendlyName=")
}
