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
	"sort"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/stackmesh/roster/internal/syncmap"
)

// Table is the local, eventually-consistent view of the cluster membership.
// It is mutated only by the initial snapshot load and by watch event
// handlers; reads are safe from any goroutine.
type Table struct {
	records *syncmap.SyncMap[string, NodeRecord]
}

func newTable() *Table {
	return &Table{
		records: syncmap.New[string, NodeRecord](),
	}
}

// upsert sets the record and returns the previously known record if any.
func (t *Table) upsert(record NodeRecord) (NodeRecord, bool) {
	previous, ok := t.records.Get(record.ID)
	t.records.Set(record.ID, copyRecord(record))
	return previous, ok
}

// remove deletes the record with the given identifier and returns it.
func (t *Table) remove(id string) (NodeRecord, bool) {
	record, ok := t.records.Get(id)
	t.records.Delete(id)
	return record, ok
}

// reset discards all records.
func (t *Table) reset() {
	t.records.Reset()
}

// Get returns the record of the member with the given identifier.
func (t *Table) Get(id string) (NodeRecord, bool) {
	record, ok := t.records.Get(id)
	if !ok {
		return NodeRecord{}, false
	}
	return copyRecord(record), true
}

// Members returns a copy of the current membership view sorted by member
// identifier.
func (t *Table) Members() []NodeRecord {
	records := t.records.Values()
	members := make([]NodeRecord, 0, len(records))
	for _, record := range records {
		members = append(members, copyRecord(record))
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].ID < members[j].ID
	})
	return members
}

// IDs returns the set of member identifiers currently in the view.
func (t *Table) IDs() goset.Set[string] {
	ids := goset.NewSet[string]()
	for _, id := range t.records.Keys() {
		ids.Add(id)
	}
	return ids
}

// Len returns the number of members in the view.
func (t *Table) Len() int {
	return t.records.Len()
}
