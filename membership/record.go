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
	"encoding/json"
	"fmt"
	"maps"
	"net"
	"strconv"
)

// NodeRecord is the metadata a cluster member publishes about itself.
// A record is written once when the node joins and removed when the node
// leaves or its lease expires.
type NodeRecord struct {
	// ID is the globally unique identifier of the member
	ID string `json:"id"`
	// Host is the hostname or IP address the member advertises
	Host string `json:"host"`
	// Port is the port the member advertises
	Port int `json:"port"`
	// StartTime is the unix timestamp in milliseconds at which the member started
	StartTime int64 `json:"startTime"`
	// Meta carries opaque application-specific metadata
	Meta map[string]string `json:"meta,omitempty"`
}

// Address returns the advertised host:port of the member.
func (r NodeRecord) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// String implements fmt.Stringer.
func (r NodeRecord) String() string {
	return fmt.Sprintf("%s@%s", r.ID, r.Address())
}

// copyRecord returns a deep copy of the record so callers can never alias
// the table's view of the metadata.
func copyRecord(r NodeRecord) NodeRecord {
	out := r
	if r.Meta != nil {
		out.Meta = maps.Clone(r.Meta)
	}
	return out
}

// encodeRecord serializes a record to the JSON payload stored under the
// member's key.
func encodeRecord(r NodeRecord) ([]byte, error) {
	return json.Marshal(r)
}

// decodeRecord deserializes a member record payload.
func decodeRecord(data []byte) (NodeRecord, error) {
	var record NodeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return NodeRecord{}, fmt.Errorf("failed to decode member record: %w", err)
	}
	if record.ID == "" {
		return NodeRecord{}, fmt.Errorf("member record is missing its identifier")
	}
	return record, nil
}
