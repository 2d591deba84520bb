package twin_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/wondertwin-ai/twilio/internal/twin"
	"github.com/wondertwin-ai/twilio/internal/twintest"
	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

func numberForm(name string) url.Values {
	return url.Values{
		"PhoneNumber":  {"+14158675309"},
		"FriendlyName": {name},
		"VoiceUrl":     {"http://www.example.com/twiml.xml"},
	}
}

// --- Auth Tests ---

func TestAuthRequired(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.Anonymous().Get(twintest.AccountPath("/Messages.json"), nil).
		AssertStatus(http.StatusUnauthorized).
		AssertCode(20003).
		AssertBodyContains("Authenticate")
}

func TestWrongToken(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)
	tc.Password = "nope"

	tc.Get(twintest.AccountPath("/Calls.json"), nil).AssertStatus(http.StatusUnauthorized)
}

func TestAccountMismatch(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.Get("/2010-04-01/Accounts/ACother/Calls.json", nil).
		AssertStatus(http.StatusUnauthorized).
		AssertCode(20003)
}

// --- Resource Tests ---

func TestCreateAndGetNumber(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	resp := tc.PostForm(twintest.AccountPath("/IncomingPhoneNumbers.json"), numberForm("barrington"))
	resp.AssertStatus(http.StatusCreated)
	m := resp.JSONMap()
	sid, _ := m["sid"].(string)
	if len(sid) != 34 || sid[:2] != "PN" {
		t.Fatalf("expected PN SID, got %q", sid)
	}
	if m["friendly_name"] != "barrington" {
		t.Errorf("expected friendly_name=barrington, got %v", m["friendly_name"])
	}
	if m["account_sid"] != twintest.AccountSID {
		t.Errorf("expected account_sid=%s, got %v", twintest.AccountSID, m["account_sid"])
	}
	wantURI := twintest.AccountPath("/IncomingPhoneNumbers/" + sid + ".json")
	if m["uri"] != wantURI {
		t.Errorf("expected uri=%s, got %v", wantURI, m["uri"])
	}

	got := tc.Get(wantURI, nil).AssertStatus(http.StatusOK).JSONMap()
	if got["voice_url"] != "http://www.example.com/twiml.xml" {
		t.Errorf("expected voice_url to round trip, got %v", got["voice_url"])
	}
}

func TestGetMissing(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.Get(twintest.AccountPath("/Calls/CAmissing.json"), nil).
		AssertStatus(http.StatusNotFound).
		AssertCode(20404)
}

func TestUpdateNumber(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	sid := tc.PostForm(twintest.AccountPath("/IncomingPhoneNumbers.json"), numberForm("old")).JSONMap()["sid"].(string)
	path := twintest.AccountPath("/IncomingPhoneNumbers/" + sid + ".json")

	m := tc.PostForm(path, url.Values{"FriendlyName": {"new"}, "Sid": {"PNhijack"}}).
		AssertStatus(http.StatusOK).JSONMap()
	if m["friendly_name"] != "new" {
		t.Errorf("expected friendly_name=new, got %v", m["friendly_name"])
	}
	if m["sid"] != sid {
		t.Errorf("sid must not change, got %v", m["sid"])
	}

	tc.PostForm(path, url.Values{"PhoneNumber": {"8675309"}}).
		AssertStatus(http.StatusBadRequest).
		AssertCode(21211).
		AssertBodyContains("Invalid Number")
}

func TestDeleteNumber(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	sid := tc.PostForm(twintest.AccountPath("/IncomingPhoneNumbers.json"), numberForm("gone")).JSONMap()["sid"].(string)
	path := twintest.AccountPath("/IncomingPhoneNumbers/" + sid + ".json")

	tc.Delete(path).AssertStatus(http.StatusNoContent)
	tc.Get(path, nil).AssertStatus(http.StatusNotFound)
	tc.Delete(path).AssertStatus(http.StatusNotFound)
}

// --- Validation Tests ---

func TestMessageValidation(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)
	path := twintest.AccountPath("/Messages.json")

	tests := []struct {
		name string
		form url.Values
		code int
	}{
		{"missing to", url.Values{"From": {"+15559876543"}, "Body": {"hi"}}, 21604},
		{"bad to", url.Values{"To": {"5551234567"}, "From": {"+15559876543"}, "Body": {"hi"}}, 21211},
		{"missing from", url.Values{"To": {"+15551234567"}, "Body": {"hi"}}, 21603},
		{"missing body", url.Values{"To": {"+15551234567"}, "From": {"+15559876543"}}, 21602},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc.PostForm(path, tt.form).AssertStatus(http.StatusBadRequest).AssertCode(tt.code)
		})
	}

	m := tc.PostForm(path, url.Values{"To": {"+15551234567"}, "From": {"+15559876543"}, "Body": {"hi"}}).
		AssertStatus(http.StatusCreated).JSONMap()
	if m["status"] != "queued" {
		t.Errorf("expected status=queued, got %v", m["status"])
	}
}

func TestPhoneNumberRequired(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.PostForm(twintest.AccountPath("/IncomingPhoneNumbers.json"), url.Values{"FriendlyName": {"x"}}).
		AssertStatus(http.StatusBadRequest).
		AssertCode(21452)
}

func TestCallValidation(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.PostForm(twintest.AccountPath("/Calls.json"), url.Values{"To": {"+15551234567"}, "From": {"+15559876543"}}).
		AssertStatus(http.StatusBadRequest).
		AssertCode(21205)
}

// --- List Tests ---

func TestListFilterAndPaging(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)
	path := twintest.AccountPath("/IncomingPhoneNumbers.json")
	for _, name := range []string{"a", "b", "a", "a"} {
		tc.PostForm(path, numberForm(name)).AssertStatus(http.StatusCreated)
	}

	m := tc.Get(path, url.Values{"FriendlyName": {"a"}}).AssertStatus(http.StatusOK).JSONMap()
	if m["total"] != float64(3) {
		t.Errorf("expected total=3, got %v", m["total"])
	}
	items, _ := m["incoming_phone_numbers"].([]any)
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}

	m = tc.Get(path, url.Values{"Page": {"1"}, "PageSize": {"3"}}).AssertStatus(http.StatusOK).JSONMap()
	items, _ = m["incoming_phone_numbers"].([]any)
	if len(items) != 1 {
		t.Errorf("expected 1 item on page 1, got %d", len(items))
	}
	if m["num_pages"] != float64(2) {
		t.Errorf("expected num_pages=2, got %v", m["num_pages"])
	}
	if m["next_page_uri"] != nil {
		t.Errorf("expected no next page, got %v", m["next_page_uri"])
	}
	if m["previous_page_uri"] == nil {
		t.Error("expected a previous page uri")
	}
}

func TestSMSListKey(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.PostForm(twintest.AccountPath("/SMS/Messages.json"),
		url.Values{"To": {"+15551234567"}, "From": {"+15559876543"}, "Body": {"hi"}}).
		AssertStatus(http.StatusCreated)

	m := tc.Get(twintest.AccountPath("/SMS/Messages.json"), nil).AssertStatus(http.StatusOK).JSONMap()
	if items, _ := m["sms_messages"].([]any); len(items) != 1 {
		t.Errorf("expected 1 sms_messages item, got %v", m["sms_messages"])
	}
}

func TestAccountSeeded(t *testing.T) {
	_, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	m := tc.Get("/2010-04-01/Accounts/"+twintest.AccountSID+".json", nil).AssertStatus(http.StatusOK).JSONMap()
	if m["status"] != "active" {
		t.Errorf("expected status=active, got %v", m["status"])
	}
}

// --- Admin Tests ---

func TestAdminRequestsAndReset(t *testing.T) {
	tw, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	tc.PostForm(twintest.AccountPath("/Queues.json"), url.Values{"FriendlyName": {"support"}}).AssertStatus(http.StatusCreated)
	tc.Get(twintest.AccountPath("/Queues.json"), nil).AssertStatus(http.StatusOK)

	reqs, _ := tc.Requests().AssertStatus(http.StatusOK).JSONMap()["requests"].([]any)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 logged requests, got %d", len(reqs))
	}

	state := tc.State().AssertStatus(http.StatusOK).JSONMap()
	if queues, _ := state["Queues"].(map[string]any); len(queues) != 1 {
		t.Errorf("expected 1 queue in state, got %v", state["Queues"])
	}

	tc.Reset().AssertStatus(http.StatusOK)
	if n := len(tw.Requests()); n != 0 {
		t.Errorf("expected empty request log after reset, got %d", n)
	}
	m := tc.Get(twintest.AccountPath("/Queues.json"), nil).JSONMap()
	if m["total"] != float64(0) {
		t.Errorf("expected no queues after reset, got %v", m["total"])
	}
	tc.Get("/2010-04-01/Accounts/"+twintest.AccountSID+".json", nil).AssertStatus(http.StatusOK)
}

func TestStatusCallbackDelivered(t *testing.T) {
	tw, srv := twintest.Start(t)
	tc := twintest.NewClient(t, srv)

	got := make(chan url.Values, 1)
	var receiverURL string
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if !twilio.ValidateRequest(twintest.AuthToken, receiverURL+r.URL.RequestURI(), r.PostForm, r.Header.Get(twin.SignatureHeader)) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		got <- r.PostForm
	}))
	defer receiver.Close()
	receiverURL = receiver.URL

	m := tc.PostForm(twintest.AccountPath("/Messages.json"), url.Values{
		"To":             {"+15551234567"},
		"From":           {"+15559876543"},
		"Body":           {"hi"},
		"StatusCallback": {receiver.URL + "/status"},
	}).AssertStatus(http.StatusCreated).JSONMap()

	if n := len(tw.Callbacks().Queued()); n != 1 {
		t.Fatalf("expected 1 queued callback, got %d", n)
	}
	tc.FlushCallbacks().AssertStatus(http.StatusOK)

	select {
	case form := <-got:
		if form.Get("MessageSid") != m["sid"] {
			t.Errorf("expected MessageSid=%v, got %q", m["sid"], form.Get("MessageSid"))
		}
		if form.Get("MessageStatus") != "queued" {
			t.Errorf("expected MessageStatus=queued, got %q", form.Get("MessageStatus"))
		}
	default:
		t.Fatal("expected a signed callback to be delivered")
	}
}
