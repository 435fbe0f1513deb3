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
	"crypto/tls"
	"strings"
	"time"

	"github.com/stackmesh/roster/internal/validation"
	"github.com/stackmesh/roster/log"
)

// Config holds the settings of a cluster member.
type Config struct {
	// Context specifies the execution context for store operations.
	// If nil, context.Background() will be used.
	Context context.Context
	// Endpoints is a list of etcd cluster endpoints
	Endpoints []string
	// Prefix is the key prefix member records are stored under,
	// e.g. "/nodes/". A trailing slash is appended when missing.
	Prefix string
	// Host is the hostname or IP address the member advertises
	Host string
	// Port is the port the member advertises
	Port int
	// Meta carries opaque application-specific metadata published with the
	// member record (optional)
	Meta map[string]string
	// TTL is the time-to-live of the registration lease in seconds.
	// A member whose keep-alive stops is removed from the cluster once this
	// duration elapses.
	TTL int64
	// DialTimeout for etcd client connections
	DialTimeout time.Duration
	// Timeout bounds individual etcd operations
	Timeout time.Duration
	// Username for etcd authentication (optional)
	Username string
	// Password for etcd authentication (optional)
	Password string
	// TLS configuration (optional)
	TLS *tls.Config
	// Logger is the logger to use. Defaults to log.DefaultLogger.
	Logger log.Logger
}

var _ validation.Validator = (*Config)(nil)

// Validate implements validation.Validator.
func (c *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("Prefix", c.Prefix)).
		AddValidator(validation.NewEmptyStringValidator("Host", c.Host)).
		AddAssertion(c.Port > 0, "Port is invalid").
		AddAssertion(c.TTL > 0, "TTL must be greater than 0").
		AddAssertion(c.DialTimeout > 0, "DialTimeout must be greater than 0").
		AddAssertion(c.Timeout > 0, "Timeout must be greater than 0").
		AddAssertion(len(c.Endpoints) > 0, "Endpoints must not be empty").
		Validate()
}

// namespace returns the store namespace derived from the configured prefix.
func (c *Config) namespace() string {
	if strings.HasSuffix(c.Prefix, "/") {
		return c.Prefix
	}
	return c.Prefix + "/"
}
