// twin-twilio serves an in-memory Twilio REST API for local development and
// integration tests. Every resource kind declared by package twilio is
// available under /2010-04-01/Accounts/{AccountSid}/...
//
// Point a client at it with Config.BaseURL = "http://localhost:13000".
package main

import (
	"log"

	"github.com/wondertwin-ai/twilio/internal/twin"
)

func main() {
	cfg := twin.ParseFlags("twin-twilio")
	t := twin.New(cfg)
	if err := t.Serve(); err != nil {
		log.Fatalf("twin-twilio: %v", err)
	}
}
