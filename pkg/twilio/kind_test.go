package twilio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPaths(t *testing.T) {
	tests := []struct {
		kind       *Kind
		collection string
		member     string
		listKey    string
	}{
		{IncomingPhoneNumber, "/Accounts/AC1/IncomingPhoneNumbers.json", "/Accounts/AC1/IncomingPhoneNumbers/PN1.json", "incoming_phone_numbers"},
		{SMS, "/Accounts/AC1/SMS/Messages.json", "/Accounts/AC1/SMS/Messages/PN1.json", "sms_messages"},
		{OutgoingCallerId, "/Accounts/AC1/OutgoingCallerIds.json", "/Accounts/AC1/OutgoingCallerIds/PN1.json", "outgoing_caller_ids"},
		{Queue, "/Accounts/AC1/Queues.json", "/Accounts/AC1/Queues/PN1.json", "queues"},
		{Account, "/Accounts.json", "/Accounts/PN1.json", "accounts"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Name, func(t *testing.T) {
			assert.Equal(t, tt.collection, tt.kind.CollectionPath("AC1"))
			assert.Equal(t, tt.member, tt.kind.MemberPath("AC1", "PN1"))
			assert.Equal(t, tt.listKey, tt.kind.ListKey)
		})
	}
}

func TestMemberPathEscapesID(t *testing.T) {
	assert.Equal(t, "/Accounts/AC1/Calls/a%2Fb.json", Call.MemberPath("AC1", "a/b"))
}

func TestLookupKind(t *testing.T) {
	for _, name := range []string{
		"IncomingPhoneNumber", "incoming_phone_number", "IncomingPhoneNumbers", "incoming_phone_numbers",
	} {
		k, err := LookupKind(name)
		require.NoError(t, err, name)
		assert.Same(t, IncomingPhoneNumber, k, name)
	}

	k, err := LookupKind("sms_messages")
	require.NoError(t, err)
	assert.Same(t, SMS, k)

	_, err = LookupKind("fax")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindsSorted(t *testing.T) {
	all := Kinds()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}

func TestDeclareTwicePanics(t *testing.T) {
	assert.Panics(t, func() { Declare(Kind{Name: "Call"}) })
}

func TestIsMutable(t *testing.T) {
	assert.True(t, IncomingPhoneNumber.IsMutable("voice_url"))
	assert.True(t, IncomingPhoneNumber.IsMutable("VoiceUrl"))
	assert.False(t, IncomingPhoneNumber.IsMutable("phone_number"))
	assert.False(t, Recording.IsMutable("duration"))
}
