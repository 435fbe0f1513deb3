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
	"testing"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	t.Run("With upsert and Get", func(t *testing.T) {
		table := newTable()
		record := NodeRecord{ID: "node-1", Host: "10.0.0.1", Port: 7000}

		previous, known := table.upsert(record)
		require.False(t, known)
		require.Zero(t, previous)

		got, ok := table.Get("node-1")
		require.True(t, ok)
		assert.Equal(t, record, got)
	})
	t.Run("With upsert returning the previous record", func(t *testing.T) {
		table := newTable()
		table.upsert(NodeRecord{ID: "node-1", Port: 7000})

		previous, known := table.upsert(NodeRecord{ID: "node-1", Port: 7001})
		require.True(t, known)
		assert.Equal(t, 7000, previous.Port)
		assert.Equal(t, 1, table.Len())
	})
	t.Run("With remove", func(t *testing.T) {
		table := newTable()
		table.upsert(NodeRecord{ID: "node-1"})

		removed, known := table.remove("node-1")
		require.True(t, known)
		assert.Equal(t, "node-1", removed.ID)
		assert.Zero(t, table.Len())

		_, known = table.remove("node-1")
		assert.False(t, known)
	})
	t.Run("With Members sorted by identifier", func(t *testing.T) {
		table := newTable()
		table.upsert(NodeRecord{ID: "node-2"})
		table.upsert(NodeRecord{ID: "node-1"})
		table.upsert(NodeRecord{ID: "node-3"})

		members := table.Members()
		require.Len(t, members, 3)
		assert.Equal(t, "node-1", members[0].ID)
		assert.Equal(t, "node-2", members[1].ID)
		assert.Equal(t, "node-3", members[2].ID)
	})
	t.Run("With IDs", func(t *testing.T) {
		table := newTable()
		table.upsert(NodeRecord{ID: "node-1"})
		table.upsert(NodeRecord{ID: "node-2"})
		assert.True(t, table.IDs().Equal(goset.NewSet("node-1", "node-2")))
	})
	t.Run("With copy isolation on reads", func(t *testing.T) {
		table := newTable()
		table.upsert(NodeRecord{ID: "node-1", Meta: map[string]string{"zone": "a"}})

		members := table.Members()
		members[0].Meta["zone"] = "b"

		got, ok := table.Get("node-1")
		require.True(t, ok)
		assert.Equal(t, "a", got.Meta["zone"])
	})
	t.Run("With reset", func(t *testing.T) {
		table := newTable()
		table.upsert(NodeRecord{ID: "node-1"})
		table.reset()
		assert.Zero(t, table.Len())
	})
}
