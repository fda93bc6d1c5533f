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
	"os"
	"os/signal"
	"syscall"
	"time"
)

// handleSignals is a utility function that sets up a context that will be cancelled
// when an interrupt signal (SIGINT) or termination signal (SIGTERM) is received.
// This allows the keyboard ^C or k8s to gracefully shut down the application.
func handleSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// runContext is the signal aware context, additionally bounded by d when
// d is positive.
func runContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	sigCtx, sigCancel := handleSignals(ctx)
	if d <= 0 {
		return sigCtx, sigCancel
	}
	timeoutCtx, timeoutCancel := context.WithTimeout(sigCtx, d)
	return timeoutCtx, func() {
		timeoutCancel()
		sigCancel()
	}
}
