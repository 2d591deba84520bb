package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// parseAssignments turns field=value arguments into attributes.
func parseAssignments(args []string) (map[string]any, error) {
	attrs := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q (want field=value)", arg)
		}
		attrs[k] = v
	}
	return attrs, nil
}

func newKindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the resource kinds this client knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type kindInfo struct {
				Name       string   `json:"name" yaml:"name"`
				Collection string   `json:"collection" yaml:"collection"`
				Fields     []string `json:"fields,omitempty" yaml:"fields,omitempty"`
				Mutable    []string `json:"mutable,omitempty" yaml:"mutable,omitempty"`
			}
			var out []kindInfo
			for _, k := range twilio.Kinds() {
				out = append(out, kindInfo{Name: k.Name, Collection: k.Collection, Fields: k.Fields, Mutable: k.Mutable})
			}
			return a.render(out)
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "find <kind> <sid>",
		Short:   "Fetch one resource by SID",
		Args:    cobra.ExactArgs(2),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.find(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return a.renderResource(r)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <kind> [field=value...]",
		Short:   "List resources, optionally filtered",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.collection(args[0])
			if err != nil {
				return err
			}
			params, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			items, err := col.All(cmd.Context(), params)
			if err != nil {
				return err
			}
			out := make([]map[string]string, 0, len(items))
			for _, r := range items {
				out = append(out, r.Attributes().Local())
			}
			return a.render(out)
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "count <kind> [field=value...]",
		Short:   "Count resources, optionally filtered",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.collection(args[0])
			if err != nil {
				return err
			}
			params, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			n, err := col.Count(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, n)
			return nil
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "create <kind> field=value...",
		Short:   "Create a resource",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.collection(args[0])
			if err != nil {
				return err
			}
			attrs, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			r, err := col.Create(cmd.Context(), attrs)
			if err != nil {
				return err
			}
			return a.renderResource(r)
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "update <kind> <sid> field=value...",
		Short:   "Update fields of a resource",
		Args:    cobra.MinimumNArgs(3),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			r, err := a.find(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			if err := r.Update(cmd.Context(), attrs); err != nil {
				return err
			}
			return a.renderResource(r)
		},
	}
}

func newDestroyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "destroy <kind> <sid>",
		Short:   "Delete a resource",
		Args:    cobra.ExactArgs(2),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.find(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			if err := r.Destroy(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s destroyed\n", r.Kind().Name, args[1])
			return nil
		},
	}
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <kind> <sid> <accessor> [value]",
		Short: "Invoke an accessor on a resource",
		Long: `Invoke an accessor on a resource. "field" reads a field, "field=" writes it
(persisting mutable fields), and "state?" tests whether the status begins
with state, e.g. in_progress?.`,
		Args:    cobra.RangeArgs(3, 4),
		PreRunE: a.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.find(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			var callArgs []any
			if len(args) == 4 {
				callArgs = append(callArgs, args[3])
			}
			v, err := r.Call(cmd.Context(), args[2], callArgs...)
			if err != nil {
				return err
			}
			if v == nil {
				fmt.Fprintln(a.out, "null")
				return nil
			}
			fmt.Fprintln(a.out, v)
			return nil
		},
	}
}

func (a *app) collection(kindName string) (*twilio.Collection, error) {
	kind, err := twilio.LookupKind(kindName)
	if err != nil {
		return nil, err
	}
	return a.client.Collection(kind), nil
}

func (a *app) find(cmd *cobra.Command, kindName, sid string) (*twilio.Resource, error) {
	col, err := a.collection(kindName)
	if err != nil {
		return nil, err
	}
	r, err := col.Find(cmd.Context(), sid)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%s %s not found", col.Kind().Name, sid)
	}
	return r, nil
}
