// MIT License
//
// Copyright (c) 2024-2026 Stackmesh Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package membership

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// watch consumes the membership watch stream and applies each change to the
// local table until the stream is canceled or fails.
func (n *Node) watch(ctx context.Context, watchChan clientv3.WatchChan) {
	defer n.streams.Done()

	for response := range watchChan {
		if err := response.Err(); err != nil {
			if ctx.Err() != nil {
				return
			}
			n.logger.Errorf("membership watch failed: %v", err)
			n.fail(fmt.Errorf("membership watch failed: %w", err))
			return
		}
		for _, event := range response.Events {
			n.handleEvent(event)
		}
	}

	if ctx.Err() == nil {
		n.fail(errors.New("membership watch closed unexpectedly"))
	}
}

// handleEvent applies a single watch event to the membership table and
// publishes the corresponding change event. A malformed record payload only
// fails that update; the watch stream stays up.
func (n *Node) handleEvent(event *clientv3.Event) {
	switch event.Type {
	case mvccpb.PUT:
		record, err := decodeRecord(event.Kv.Value)
		if err != nil {
			n.logger.Errorf("skipping malformed member record at key=(%s): %v", event.Kv.Key, err)
			return
		}
		previous, known := n.table.upsert(record)
		if known {
			n.broker.Publish(Topic, NodeModified{Node: record, Current: previous})
			n.logger.Debugf("node=(%s) record updated", record.String())
			return
		}
		n.broker.Publish(Topic, NodeJoined{Node: record})
		n.logger.Infof("node=(%s) joined the cluster", record.String())
	case mvccpb.DELETE:
		record, known := n.table.remove(memberID(string(event.Kv.Key)))
		if !known {
			return
		}
		n.broker.Publish(Topic, NodeLeft{Node: record})
		n.logger.Infof("node=(%s) left the cluster", record.String())
	default:
		n.logger.Warnf("ignoring unrecognized watch event type=(%s)", event.Type)
	}
}

// consumeKeepAlive drains the lease keep-alive responses. The stream closing
// while the node is still joined means liveness is no longer being
// refreshed: the registration will expire once the lease TTL elapses and the
// failure is surfaced on Done.
func (n *Node) consumeKeepAlive(ctx context.Context, responses <-chan *clientv3.LeaseKeepAliveResponse) {
	defer n.streams.Done()

	for range responses {
	}

	if ctx.Err() != nil {
		return
	}

	n.logger.Warn("lease keep-alive stream closed, registration expires once the lease TTL elapses")
	n.fail(errors.New("lease keep-alive stream closed"))
}

// fail reports a terminal stream failure on Done without blocking.
func (n *Node) fail(err error) {
	select {
	case n.done <- err:
	default:
	}
}

// memberID extracts the member identifier from a store key. Keys are the
// member identifier relative to the namespace; any leading path segments
// are stripped.
func memberID(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
