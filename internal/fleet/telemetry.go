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

package fleet

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	recordsSubmittedCounter otelmetric.Int64Counter
	submitErrorCounter      otelmetric.Int64Counter
	activeZonesGauge        otelmetric.Int64UpDownCounter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/dcgen/internal/fleet")

	var err error
	recordsSubmittedCounter, err = meter.Int64Counter(
		"dcgen.fleet.records.submitted",
		otelmetric.WithDescription("Number of generated records handed to the dispatcher"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create records.submitted counter: %w", err))
	}

	submitErrorCounter, err = meter.Int64Counter(
		"dcgen.fleet.records.submit_errors",
		otelmetric.WithDescription("Number of generated records the dispatcher refused"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create records.submit_errors counter: %w", err))
	}

	activeZonesGauge, err = meter.Int64UpDownCounter(
		"dcgen.fleet.zones.active",
		otelmetric.WithDescription("Number of zone schedulers currently running"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create zones.active counter: %w", err))
	}
}

func recordSubmitted(ctx context.Context, zone string, err error) {
	attrs := otelmetric.WithAttributes(attribute.String("zone", zone))
	if err != nil {
		submitErrorCounter.Add(ctx, 1, attrs)
		return
	}
	recordsSubmittedCounter.Add(ctx, 1, attrs)
}
