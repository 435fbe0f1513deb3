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

import "github.com/pkg/errors"

var (
	// ErrAlreadyJoined is returned when attempting to join a cluster the node
	// is already a member of
	ErrAlreadyJoined = errors.New("node already joined the cluster")
	// ErrNotJoined is returned when attempting to leave a cluster the node
	// never joined
	ErrNotJoined = errors.New("node has not joined the cluster")
	// ErrClosed is returned when operating on a node that has been closed
	ErrClosed = errors.New("node is closed")
	// ErrJoinFailed is returned when any step of the join sequence fails
	ErrJoinFailed = errors.New("failed to join the cluster")
	// ErrLeaveFailed is returned when the lease revocation fails on leave.
	// The node still transitions to Left locally since the lease TTL bounds
	// the lifetime of its registration.
	ErrLeaveFailed = errors.New("failed to leave the cluster")
	// ErrSnapshotFailed is returned when the initial membership read fails
	ErrSnapshotFailed = errors.New("failed to load the membership snapshot")
)
