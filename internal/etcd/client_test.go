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

package etcd

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testcontainer "github.com/testcontainers/testcontainers-go/modules/etcd"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func TestClient(t *testing.T) {
	cluster := startEtcdCluster(t)
	endpoints, err := cluster.ClientEndpoints(t.Context())
	require.NoError(t, err)

	t.Run("With an invalid config", func(t *testing.T) {
		client, err := NewClient(&Config{})
		require.Error(t, err)
		require.Nil(t, client)
	})

	t.Run("With an unreachable endpoint", func(t *testing.T) {
		client, err := NewClient(&Config{
			Context:     t.Context(),
			Endpoints:   []string{"127.0.0.1:1"},
			Namespace:   "/test/",
			DialTimeout: time.Second,
			Timeout:     time.Second,
		})
		require.Error(t, err)
		require.Nil(t, client)
	})

	t.Run("With Put and GetPrefix", func(t *testing.T) {
		client := newTestClient(t, endpoints)
		require.NoError(t, client.Put(t.Context(), "members/one", []byte("alpha"), clientv3.NoLease))
		require.NoError(t, client.Put(t.Context(), "members/two", []byte("beta"), clientv3.NoLease))

		entries, revision, err := client.GetPrefix(t.Context(), "members/")
		require.NoError(t, err)
		require.Positive(t, revision)
		require.Len(t, entries, 2)
		for _, entry := range entries {
			assert.Positive(t, entry.ModRevision)
			assert.LessOrEqual(t, entry.ModRevision, revision)
		}

		keys := []string{entries[0].Key, entries[1].Key}
		assert.ElementsMatch(t, []string{"members/one", "members/two"}, keys)
	})

	t.Run("With GetPrefix on an empty prefix", func(t *testing.T) {
		client := newTestClient(t, endpoints)
		entries, revision, err := client.GetPrefix(t.Context(), "nothing/")
		require.NoError(t, err)
		require.Positive(t, revision)
		require.Empty(t, entries)
	})

	t.Run("With a key attached to a lease", func(t *testing.T) {
		client := newTestClient(t, endpoints)
		leaseID, err := client.GrantLease(t.Context(), 30)
		require.NoError(t, err)
		require.NotEqual(t, clientv3.NoLease, leaseID)

		require.NoError(t, client.Put(t.Context(), "leased", []byte("payload"), leaseID))
		entries, _, err := client.GetPrefix(t.Context(), "leased")
		require.NoError(t, err)
		require.Len(t, entries, 1)

		// revoking the lease deletes the key
		require.NoError(t, client.RevokeLease(t.Context(), leaseID))
		entries, _, err = client.GetPrefix(t.Context(), "leased")
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("With KeepAlive", func(t *testing.T) {
		client := newTestClient(t, endpoints)
		leaseID, err := client.GrantLease(t.Context(), 5)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		responses, err := client.KeepAlive(ctx, leaseID)
		require.NoError(t, err)

		select {
		case response := <-responses:
			require.NotNil(t, response)
			assert.Equal(t, leaseID, response.ID)
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for a keep-alive response")
		}
		cancel()
	})

	t.Run("With WatchPrefix", func(t *testing.T) {
		client := newTestClient(t, endpoints)
		_, revision, err := client.GetPrefix(t.Context(), "watched/")
		require.NoError(t, err)

		watchChan := client.WatchPrefix(t.Context(), "watched/", revision+1)

		require.NoError(t, client.Put(t.Context(), "watched/one", []byte("alpha"), clientv3.NoLease))

		select {
		case response := <-watchChan:
			require.NoError(t, response.Err())
			require.Len(t, response.Events, 1)
			event := response.Events[0]
			assert.Equal(t, mvccpb.PUT, event.Type)
			assert.Equal(t, "watched/one", string(event.Kv.Key))
			assert.Equal(t, "alpha", string(event.Kv.Value))
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for a watch event")
		}
	})
}

func startEtcdCluster(t *testing.T) *testcontainer.EtcdContainer {
	t.Helper()
	etcdContainer, err := testcontainer.Run(
		t.Context(),
		"gcr.io/etcd-development/etcd:v3.5.14",
		testcontainer.WithNodes("etcd-1", "etcd-2", "etcd-3"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := testcontainers.TerminateContainer(etcdContainer)
		require.NoError(t, err)
	})
	return etcdContainer
}

func newTestClient(t *testing.T, endpoints []string) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		Context:     t.Context(),
		Endpoints:   endpoints,
		Namespace:   fmt.Sprintf("/client-%s/", uuid.NewString()),
		DialTimeout: 5 * time.Second,
		Timeout:     10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})
	return client
}
