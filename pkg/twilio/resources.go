package twilio

// Declared resource kinds. Field lists name what each resource carries in
// local form; undeclared fields remain reachable through Get and Call.
var (
	Account = Declare(Kind{
		Name:      "Account",
		SidPrefix: "AC",
		Root:      true,
		Fields:    []string{"sid", "friendly_name", "status", "type", "auth_token", "date_created", "date_updated", "uri"},
		Mutable:   []string{"friendly_name", "status"},
	})

	AvailablePhoneNumber = Declare(Kind{
		Name:   "AvailablePhoneNumber",
		Fields: []string{"friendly_name", "phone_number", "lata", "rate_center", "latitude", "longitude", "region", "postal_code", "iso_country"},
	})

	Call = Declare(Kind{
		Name:      "Call",
		SidPrefix: "CA",
		Fields:    []string{"sid", "parent_call_sid", "to", "from", "status", "start_time", "end_time", "duration", "price", "direction", "answered_by", "forwarded_from", "caller_name", "uri"},
		Mutable:   []string{"url", "method", "status"},
	})

	Conference = Declare(Kind{
		Name:      "Conference",
		SidPrefix: "CF",
		Fields:    []string{"sid", "friendly_name", "status", "date_created", "date_updated", "uri"},
	})

	IncomingPhoneNumber = Declare(Kind{
		Name:      "IncomingPhoneNumber",
		SidPrefix: "PN",
		Fields: []string{
			"sid", "account_sid", "friendly_name", "phone_number", "api_version",
			"voice_url", "voice_method", "voice_fallback_url", "voice_fallback_method",
			"status_callback", "status_callback_method", "voice_caller_id_lookup",
			"sms_url", "sms_method", "sms_fallback_url", "sms_fallback_method",
			"date_created", "date_updated", "uri",
		},
		Mutable: []string{
			"friendly_name", "api_version", "voice_url", "voice_method",
			"voice_fallback_url", "voice_fallback_method", "status_callback",
			"status_callback_method", "sms_url", "sms_method", "sms_fallback_url",
			"sms_fallback_method", "voice_caller_id_lookup",
		},
	})

	Message = Declare(Kind{
		Name:      "Message",
		SidPrefix: "SM",
		Fields:    []string{"sid", "to", "from", "body", "status", "direction", "num_segments", "num_media", "price", "price_unit", "error_code", "error_message", "date_sent", "uri"},
		Mutable:   []string{"body"},
	})

	Notification = Declare(Kind{
		Name:      "Notification",
		SidPrefix: "NO",
		Fields:    []string{"sid", "call_sid", "log", "error_code", "more_info", "message_text", "message_date", "request_url", "request_method", "uri"},
	})

	OutgoingCallerId = Declare(Kind{
		Name:      "OutgoingCallerId",
		SidPrefix: "PN",
		Fields:    []string{"sid", "friendly_name", "phone_number", "date_created", "date_updated", "uri"},
		Mutable:   []string{"friendly_name"},
	})

	Participant = Declare(Kind{
		Name:    "Participant",
		Fields:  []string{"call_sid", "conference_sid", "muted", "start_conference_on_enter", "end_conference_on_exit", "uri"},
		Mutable: []string{"muted"},
	})

	Queue = Declare(Kind{
		Name:      "Queue",
		SidPrefix: "QU",
		Fields:    []string{"sid", "friendly_name", "current_size", "max_size", "average_wait_time", "uri"},
		Mutable:   []string{"friendly_name", "max_size"},
	})

	Recording = Declare(Kind{
		Name:      "Recording",
		SidPrefix: "RE",
		Fields:    []string{"sid", "call_sid", "duration", "api_version", "date_created", "uri"},
	})

	SMS = Declare(Kind{
		Name:      "SMS",
		SidPrefix: "SM",
		Fields:    []string{"sid", "to", "from", "body", "status", "direction", "price", "date_sent", "uri"},
	})

	Transcription = Declare(Kind{
		Name:      "Transcription",
		SidPrefix: "TR",
		Fields:    []string{"sid", "recording_sid", "status", "duration", "transcription_text", "price", "uri"},
	})
)
