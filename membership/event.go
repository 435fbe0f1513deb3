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

// Topic is the event stream topic membership change events are published to.
const Topic = "membership.changes"

// Event marks the membership lifecycle events delivered to subscribers.
type Event interface {
	IsEvent()
}

// NodeJoined is published when a new member record appears in the store.
type NodeJoined struct {
	// Node specifies the added member
	Node NodeRecord
}

func (e NodeJoined) IsEvent() {}

// NodeLeft is published when a member record disappears from the store,
// either through an explicit leave or a lease expiry.
type NodeLeft struct {
	// Node specifies the removed member
	Node NodeRecord
}

func (e NodeLeft) IsEvent() {}

// NodeModified is published when an existing member record is written again.
type NodeModified struct {
	// Node specifies the new state of the member
	Node NodeRecord
	// Current specifies the previously known state of the member
	Current NodeRecord
}

func (e NodeModified) IsEvent() {}
