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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cardinalhq/oteltools/pkg/telemetry"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/host"
	iruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/cardinalhq/dcgen/internal/idgen"
)

// logOutput receives all log lines. Stdout is reserved for generated records.
var logOutput io.Writer = os.Stderr

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" || os.Getenv("DCGEN_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func otlpEnabled() bool {
	return os.Getenv("OTEL_SERVICE_NAME") != "" && os.Getenv("ENABLE_OTLP_TELEMETRY") == "true"
}

// setupTelemetry installs the default logger and, when OTLP export is
// enabled, the OpenTelemetry SDK with runtime and host metrics. The returned
// function shuts the SDK down.
func setupTelemetry(ctx context.Context, servicename string) (func() error, error) {
	instanceID := idgen.InstanceID()
	opts := &slog.HandlerOptions{Level: logLevel()}

	if !otlpEnabled() {
		slog.SetDefault(slog.New(slog.NewTextHandler(logOutput, opts)).With(
			slog.String("service", servicename),
			slog.Int64("instanceID", instanceID),
		))
		return func() error { return nil }, nil
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(
		slog.NewTextHandler(logOutput, opts),
		otelslog.NewHandler(servicename),
	)).With(
		slog.String("service", servicename),
		slog.Int64("instanceID", instanceID),
	))
	slog.Info("OpenTelemetry exporting enabled")

	otelShutdown, err := telemetry.SetupOTelSDK(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup OpenTelemetry SDK: %w", err)
	}

	if err := iruntime.Start(iruntime.WithMinimumReadMemStatsInterval(time.Second * 10)); err != nil {
		slog.Warn("failed to start runtime metrics", slog.Any("error", err))
	}
	if err := host.Start(); err != nil {
		slog.Warn("failed to start host metrics", slog.Any("error", err))
	}

	return func() error {
		slog.Info("Shutting down OpenTelemetry SDK")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return otelShutdown(ctx)
	}, nil
}

// withTelemetry runs fn with telemetry set up for servicename and shuts it
// down afterwards.
func withTelemetry(ctx context.Context, servicename string, fn func() error) error {
	doneFx, err := setupTelemetry(ctx, servicename)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer func() {
		if err := doneFx(); err != nil {
			slog.Error("Error shutting down telemetry", slog.Any("error", err))
		}
	}()
	return fn()
}
