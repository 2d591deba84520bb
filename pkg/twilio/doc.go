// Package twilio maps Twilio REST resources onto local objects.
//
// A Kind names a resource type (IncomingPhoneNumber, Call, SMS, ...) and
// knows where its collection lives. Binding a Kind to a Client yields a
// Collection with Find, All, Count, New and Create; each returns Resources
// whose attributes are addressable in local form ("voice_url") or API form
// ("VoiceUrl"):
//
//	client, err := twilio.NewClient(twilio.Config{AccountSID: sid, AuthToken: token})
//	numbers := client.Collection(twilio.IncomingPhoneNumber)
//	n, err := numbers.Create(ctx, map[string]any{"phone_number": "+19175551234"})
//	err = n.Update(ctx, map[string]any{"friendly_name": "barrington"})
//	err = n.Destroy(ctx)
//
// Every request carries the account SID and auth token as HTTP Basic
// credentials. Responses with status 400-599 become *APIError values.
// Operations on a destroyed resource fail locally with an error matching
// ErrDestroyed.
//
// Resource.Call resolves accessor names the way the API's field naming
// suggests: "friendly_name=" writes, "in_progress?" tests the status and any
// other name reads. Resolutions are cached per Kind.
//
// Setup installs a process-wide default client so the Kind shortcuts
// (twilio.Call.Find, twilio.SMS.All, ...) can be used without passing a
// client around.
package twilio
