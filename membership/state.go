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

// State represents the lifecycle state of a cluster member.
type State int32

const (
	// NotJoined means the node has not joined the cluster yet
	NotJoined State = iota
	// Joining means the join sequence is in progress
	Joining
	// Joined means the node is registered and watching for membership changes
	Joined
	// Leaving means the leave sequence is in progress
	Leaving
	// Left means the node has left the cluster
	Left
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case NotJoined:
		return "NotJoined"
	case Joining:
		return "Joining"
	case Joined:
		return "Joined"
	case Leaving:
		return "Leaving"
	case Left:
		return "Left"
	default:
		return "Unknown"
	}
}
