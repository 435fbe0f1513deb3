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

// Package etcd wraps the etcd v3 client with the narrow surface the
// membership manager consumes: namespaced key/value access, prefix watches
// starting at a given revision, and lease grant/keep-alive/revoke.
package etcd

import (
	"context"
	"errors"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
)

// Entry is a single key/value pair read from the store.
// The key is relative to the client namespace.
type Entry struct {
	Key         string
	Value       []byte
	ModRevision int64
}

// Client is a thin, namespaced facade over the etcd v3 client.
// All keys, leases and watches issued through it are scoped to the
// configured namespace.
type Client struct {
	config  *Config
	client  *clientv3.Client
	kv      clientv3.KV
	lease   clientv3.Lease
	watcher clientv3.Watcher
}

// NewClient connects to the store and probes the first endpoint to make sure
// it is reachable before returning.
func NewClient(config *Config) (*Client, error) {
	if config.Context == nil {
		config.Context = context.Background()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		TLS:         config.TLS,
		Username:    config.Username,
		Password:    config.Password,
		Context:     config.Context,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(config.Context, config.DialTimeout)
	defer cancel()

	_, err = client.Status(ctx, config.Endpoints[0])
	if err != nil {
		if cerr := client.Close(); cerr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close etcd client: %w", cerr))
		}
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &Client{
		config:  config,
		client:  client,
		kv:      namespace.NewKV(client.KV, config.Namespace),
		lease:   namespace.NewLease(client.Lease, config.Namespace),
		watcher: namespace.NewWatcher(client.Watcher, config.Namespace),
	}, nil
}

// Put upserts a key. When leaseID is non-zero the key is attached to that
// lease and removed by the store once the lease expires.
func (c *Client) Put(ctx context.Context, key string, value []byte, leaseID clientv3.LeaseID) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var opts []clientv3.OpOption
	if leaseID != clientv3.NoLease {
		opts = append(opts, clientv3.WithLease(leaseID))
	}

	if _, err := c.kv.Put(ctx, key, string(value), opts...); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

// GetPrefix returns all entries under the given prefix together with the
// store revision at which the read was served.
func (c *Client) GetPrefix(ctx context.Context, prefix string) ([]Entry, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.kv.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read prefix %s: %w", prefix, err)
	}

	entries := make([]Entry, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		entries = append(entries, Entry{
			Key:         string(kv.Key),
			Value:       kv.Value,
			ModRevision: kv.ModRevision,
		})
	}
	return entries, resp.Header.Revision, nil
}

// WatchPrefix opens a watch on the given prefix starting at fromRevision
// inclusive. A fromRevision of zero starts the watch at the current
// revision. The returned channel is closed when ctx is canceled or the
// stream fails; stream errors are reported on the responses themselves.
func (c *Client) WatchPrefix(ctx context.Context, prefix string, fromRevision int64) clientv3.WatchChan {
	opts := []clientv3.OpOption{clientv3.WithPrefix()}
	if fromRevision > 0 {
		opts = append(opts, clientv3.WithRev(fromRevision))
	}
	return c.watcher.Watch(ctx, prefix, opts...)
}

// GrantLease creates a lease with the given TTL in seconds.
func (c *Client) GrantLease(ctx context.Context, ttl int64) (clientv3.LeaseID, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	lease, err := c.lease.Grant(ctx, ttl)
	if err != nil {
		return clientv3.NoLease, fmt.Errorf("failed to create lease: %w", err)
	}
	return lease.ID, nil
}

// KeepAlive starts refreshing the given lease until ctx is canceled.
// The returned channel is closed when the keep-alive stream terminates.
func (c *Client) KeepAlive(ctx context.Context, leaseID clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error) {
	ch, err := c.lease.KeepAlive(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to start keep-alive: %w", err)
	}
	return ch, nil
}

// RevokeLease immediately expires the lease and deletes all keys attached
// to it.
func (c *Client) RevokeLease(ctx context.Context, leaseID clientv3.LeaseID) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if _, err := c.lease.Revoke(ctx, leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	return nil
}

// Close releases the underlying etcd client connection.
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close etcd client: %w", err)
	}
	return nil
}
