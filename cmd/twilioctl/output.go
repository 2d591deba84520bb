package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// render writes v in the selected output format.
func (a *app) render(v any) error {
	switch a.format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}
		_, err = a.out.Write(data)
		return err
	}
}

// renderResource writes a resource's attributes keyed by local names.
func (a *app) renderResource(r *twilio.Resource) error {
	return a.render(r.Attributes().Local())
}
