package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wptgen/wptgen/internal/generate"
	"github.com/wptgen/wptgen/internal/spec"
)

func newExpandCmd() *cobra.Command {
	var specPath string

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the expanded test cases of a spec as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if specPath == "" {
				return errors.New("spec path is required")
			}
			s, err := spec.Load(specPath)
			if err != nil {
				return err
			}
			if err := s.Check(); err != nil {
				return err
			}
			cases, err := generate.Expand(s)
			if err != nil {
				return err
			}

			out := make([]map[string]any, 0, len(cases))
			for _, tc := range cases {
				out = append(out, tc.ToJSON())
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVarP(&specPath, "spec", "s", "", "Path to spec JSON")

	return cmd
}
