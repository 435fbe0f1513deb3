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

// Package membership implements an etcd-backed cluster membership manager.
//
// A Node registers itself under a shared key prefix with a lease-attached
// record, loads the membership snapshot, and keeps its local view current by
// watching for changes from the snapshot revision onward. Liveness is
// maintained by a lease keep-alive stream: a member that stops refreshing its
// lease is removed by the store once the lease TTL elapses, and every other
// member observes the removal through a delete event on the member's key.
package membership

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/atomic"

	"github.com/stackmesh/roster/eventstream"
	"github.com/stackmesh/roster/internal/etcd"
	"github.com/stackmesh/roster/log"
)

// Node is the membership lifecycle controller of a single cluster member.
// It drives the join and leave sequences and maintains the local membership
// table while joined.
//
// A Node is safe for concurrent use. Join, Leave and Close are serialized;
// reads may be issued from any goroutine at any time.
type Node struct {
	mu     sync.Mutex
	config *Config
	logger log.Logger
	record NodeRecord

	client *etcd.Client
	broker eventstream.Stream
	table  *Table

	state  *atomic.Int32
	closed *atomic.Bool

	leaseID       clientv3.LeaseID
	cancelStreams context.CancelFunc
	streams       sync.WaitGroup
	done          chan error
}

// NewNode creates a Node from the given config and connects to the
// coordination store. The node is not visible to the cluster until Join is
// called.
func NewNode(config *Config) (*Node, error) {
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.Logger == nil {
		config.Logger = log.DefaultLogger
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := etcd.NewClient(&etcd.Config{
		Context:     config.Context,
		Endpoints:   config.Endpoints,
		Namespace:   config.namespace(),
		TLS:         config.TLS,
		DialTimeout: config.DialTimeout,
		Username:    config.Username,
		Password:    config.Password,
		Timeout:     config.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Node{
		config: config,
		logger: config.Logger,
		record: NodeRecord{
			ID:        uuid.NewString(),
			Host:      config.Host,
			Port:      config.Port,
			StartTime: time.Now().UnixMilli(),
			Meta:      maps.Clone(config.Meta),
		},
		client:  client,
		broker:  eventstream.New(),
		table:   newTable(),
		state:   atomic.NewInt32(int32(NotJoined)),
		closed:  atomic.NewBool(false),
		leaseID: clientv3.NoLease,
		done:    make(chan error, 1),
	}, nil
}

// Join registers the node with the cluster. The sequence is: grant the
// registration lease, start its keep-alive, write the node's record under
// the member prefix, load the membership snapshot, then watch for changes
// from the snapshot revision onward. When any step fails the partial state
// is rolled back and the node returns to NotJoined.
func (n *Node) Join(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed.Load() {
		return ErrClosed
	}

	if State(n.state.Load()) != NotJoined {
		return ErrAlreadyJoined
	}

	n.state.Store(int32(Joining))

	leaseID, err := n.client.GrantLease(ctx, n.config.TTL)
	if err != nil {
		n.state.Store(int32(NotJoined))
		return errors.Join(ErrJoinFailed, err)
	}
	n.leaseID = leaseID

	streamsCtx, cancel := context.WithCancel(n.config.Context)
	n.cancelStreams = cancel

	keepAlive, err := n.client.KeepAlive(streamsCtx, leaseID)
	if err != nil {
		n.abortJoin(ctx)
		return errors.Join(ErrJoinFailed, err)
	}

	n.streams.Add(1)
	go n.consumeKeepAlive(streamsCtx, keepAlive)

	payload, err := encodeRecord(n.record)
	if err != nil {
		n.abortJoin(ctx)
		return errors.Join(ErrJoinFailed, err)
	}

	if err := n.client.Put(ctx, n.record.ID, payload, leaseID); err != nil {
		n.abortJoin(ctx)
		return errors.Join(ErrJoinFailed, err)
	}

	revision, err := n.loadSnapshot(ctx)
	if err != nil {
		n.abortJoin(ctx)
		return errors.Join(ErrJoinFailed, err)
	}

	watchChan := n.client.WatchPrefix(streamsCtx, "", revision+1)
	n.streams.Add(1)
	go n.watch(streamsCtx, watchChan)

	n.state.Store(int32(Joined))
	n.logger.Infof("node=(%s) joined the cluster, %d member(s) known", n.record.String(), n.table.Len())
	return nil
}

// Leave deregisters the node from the cluster by revoking its registration
// lease, which atomically deletes its record. The watch and keep-alive
// streams are stopped first. Even when the revocation fails the node
// transitions to Left: the lease TTL bounds the lifetime of the stale
// registration. Leave is idempotent; calling it again after the node has
// left is a no-op.
func (n *Node) Leave(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.leave(ctx)
}

// Close leaves the cluster when joined and releases the store client
// connection. It is idempotent: the second and subsequent calls are no-ops.
func (n *Node) Close(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if State(n.state.Load()) == Joined {
		err = n.leave(ctx)
	}

	n.broker.Close()
	if cerr := n.client.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

// Members returns an immutable copy of the current membership view. It is
// safe to call in any state; after Leave or Close it returns the last
// observed view.
func (n *Node) Members() []NodeRecord {
	return n.table.Members()
}

// MemberIDs returns the set of member identifiers currently in the view.
func (n *Node) MemberIDs() goset.Set[string] {
	return n.table.IDs()
}

// OwnRecord returns the record the node publishes about itself.
func (n *Node) OwnRecord() NodeRecord {
	return copyRecord(n.record)
}

// State returns the current lifecycle state of the node.
func (n *Node) State() State {
	return State(n.state.Load())
}

// Done reports the terminal failure of the watch or keep-alive stream.
// Receiving on it lets the embedding application decide on corrective
// action, typically leaving and rejoining with a fresh node. The membership
// manager itself never retries.
func (n *Node) Done() <-chan error {
	return n.done
}

// Subscribe registers a subscriber for membership change events. The
// subscriber receives NodeJoined, NodeLeft and NodeModified payloads.
func (n *Node) Subscribe() eventstream.Subscriber {
	sub := n.broker.AddSubscriber()
	n.broker.Subscribe(sub, Topic)
	return sub
}

// Unsubscribe removes the given subscriber and closes its message channel.
func (n *Node) Unsubscribe(sub eventstream.Subscriber) {
	n.broker.RemoveSubscriber(sub)
}

// loadSnapshot reads all member records under the prefix into the table and
// returns the store revision the read was served at.
func (n *Node) loadSnapshot(ctx context.Context) (int64, error) {
	entries, revision, err := n.client.GetPrefix(ctx, "")
	if err != nil {
		return 0, errors.Join(ErrSnapshotFailed, err)
	}

	n.table.reset()
	for _, entry := range entries {
		record, err := decodeRecord(entry.Value)
		if err != nil {
			return 0, errors.Join(ErrSnapshotFailed, err)
		}
		n.table.upsert(record)
	}
	return revision, nil
}

// leave performs the leave sequence. Callers must hold n.mu.
func (n *Node) leave(ctx context.Context) error {
	switch State(n.state.Load()) {
	case Joined:
	case Leaving, Left:
		// already left, nothing to undo
		return nil
	default:
		return ErrNotJoined
	}

	n.state.Store(int32(Leaving))

	// stop the watch and keep-alive streams before revoking the lease so
	// the node does not observe its own removal
	n.stopStreams()

	err := n.client.RevokeLease(ctx, n.leaseID)
	n.leaseID = clientv3.NoLease
	n.state.Store(int32(Left))
	n.logger.Infof("node=(%s) left the cluster", n.record.String())

	if err != nil {
		return errors.Join(ErrLeaveFailed, err)
	}
	return nil
}

// abortJoin rolls back a partially completed join sequence. Callers must
// hold n.mu.
func (n *Node) abortJoin(ctx context.Context) {
	n.stopStreams()

	if n.leaseID != clientv3.NoLease {
		// an error shouldn't fail the rollback, the lease expires naturally
		// if the revoke does not go through
		if err := n.client.RevokeLease(ctx, n.leaseID); err != nil {
			n.logger.Warnf("failed to revoke lease during join rollback: %v", err)
		}
		n.leaseID = clientv3.NoLease
	}

	n.table.reset()
	n.state.Store(int32(NotJoined))
}

// stopStreams cancels the watch and keep-alive streams and waits for their
// goroutines to drain.
func (n *Node) stopStreams() {
	if n.cancelStreams != nil {
		n.cancelStreams()
		n.cancelStreams = nil
	}
	n.streams.Wait()
}
