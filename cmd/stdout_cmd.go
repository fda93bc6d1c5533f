// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cardinalhq/dcgen/internal/fleet"
)

func newStdoutCmd() *cobra.Command {
	var gen generatorFlags

	c := &cobra.Command{
		Use:   "stdout",
		Short: "Output messages to stdout",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			params, err := gen.params()
			if err != nil {
				return err
			}

			ctx, cancel := runContext(c.Context(), gen.duration)
			defer cancel()

			return withTelemetry(ctx, "dcgen-stdout", func() error {
				return fleet.RunStdout(ctx, c.OutOrStdout(), params)
			})
		},
	}
	gen.register(c)
	return c
}
