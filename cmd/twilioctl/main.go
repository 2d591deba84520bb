// twilioctl is a command line client for the Twilio REST API.
//
// Usage:
//
//	twilioctl kinds                              List resource kinds
//	twilioctl find <kind> <sid>                  Fetch one resource
//	twilioctl list <kind> [field=value...]       List resources, filtered
//	twilioctl count <kind> [field=value...]      Count resources
//	twilioctl create <kind> field=value...       Create a resource
//	twilioctl update <kind> <sid> field=value... Update a resource
//	twilioctl destroy <kind> <sid>               Delete a resource
//	twilioctl call <kind> <sid> <accessor> [v]   Invoke an accessor (voice_url, status=, in_progress?)
//	twilioctl token [--incoming n] [--outgoing AP...]
//	twilioctl configure                          Save a credentials profile
//
// Credentials come from flags, TWILIO_* environment variables (a .env file
// in the working directory is loaded first) or ~/.twilio/config.yaml, in
// that order of precedence.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
