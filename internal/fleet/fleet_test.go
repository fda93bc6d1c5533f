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
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cardinalhq/dcgen/internal/fly"
)

type submission struct {
	topic     string
	partition int
	message   fly.Message
}

type fakeDispatcher struct {
	mu          sync.Mutex
	submissions []submission
	submitErr   error
	delay       time.Duration
	closed      atomic.Int32
	closeErr    error
}

func (d *fakeDispatcher) Submit(_ context.Context, topic string, partition int, message fly.Message) error {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submissions = append(d.submissions, submission{topic: topic, partition: partition, message: message})
	return d.submitErr
}

func (d *fakeDispatcher) Close() error {
	d.closed.Add(1)
	return d.closeErr
}

func (d *fakeDispatcher) snapshot() []submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]submission, len(d.submissions))
	copy(out, d.submissions)
	return out
}

type fakeProvisioner struct {
	result fly.ProvisionResult
	err    error
	calls  atomic.Int32
	specs  []fly.TopicSpec
}

func (p *fakeProvisioner) Provision(_ context.Context, spec fly.TopicSpec) (fly.ProvisionResult, error) {
	p.calls.Add(1)
	p.specs = append(p.specs, spec)
	return p.result, p.err
}

var errBoom = errors.New("boom")
