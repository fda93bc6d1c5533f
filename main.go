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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	gomaxecs "github.com/rdforte/gomaxecs/maxprocs"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/cardinalhq/dcgen/cmd"
)

func stderrf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
}

// tuneRuntime sizes GOMAXPROCS and the soft memory limit to the container
// the generator runs in.
func tuneRuntime() {
	if gomaxecs.IsECS() {
		if _, err := gomaxecs.Set(gomaxecs.WithLogger(stderrf)); err != nil {
			stderrf("failed to set maxprocs for ECS: %v", err)
		}
	} else if _, err := maxprocs.Set(maxprocs.Logger(stderrf)); err != nil {
		stderrf("failed to set maxprocs: %v", err)
	}

	_, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.8),
		memlimit.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
		memlimit.WithProvider(
			memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			),
		),
	)
	if err != nil {
		stderrf("failed to set memory limit: %v", err)
	}
}

func main() {
	time.Local = time.UTC
	tuneRuntime()
	cmd.Execute()
}
