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

// membershipd is a small demo daemon. It joins the cluster, logs every
// membership transition it observes, and leaves gracefully on SIGINT or
// SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackmesh/roster/log"
	"github.com/stackmesh/roster/membership"
)

const (
	// ParamEndpoints lists the etcd cluster endpoints.
	ParamEndpoints = "endpoints"
	// ParamPrefix is the key prefix member records are stored under.
	ParamPrefix = "prefix"
	// ParamHost is the host the member advertises.
	ParamHost = "host"
	// ParamPort is the port the member advertises.
	ParamPort = "port"
	// ParamTTL is the registration lease TTL in seconds.
	ParamTTL = "ttl"
	// ParamDialTimeout bounds the etcd connection attempt.
	ParamDialTimeout = "dial-timeout"
	// ParamTimeout bounds individual etcd operations.
	ParamTimeout = "timeout"
	// ParamJoinAttempts is the number of join attempts before giving up.
	ParamJoinAttempts = "join-attempts"
	// ParamVerbose enables verbose logging.
	ParamVerbose = "verbose"
)

func main() {
	v, err := setupConfiguration(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.DefaultLogger.Fatalf("failed to parse configuration: %v", err)
	}
	if err := run(v); err != nil {
		log.DefaultLogger.Fatalf("%v", err)
	}
}

func run(v *viper.Viper) error {
	logger := log.DefaultLogger
	if v.GetBool(ParamVerbose) {
		logger = log.DebugLogger
	}

	node, err := membership.NewNode(&membership.Config{
		Endpoints:   v.GetStringSlice(ParamEndpoints),
		Prefix:      v.GetString(ParamPrefix),
		Host:        v.GetString(ParamHost),
		Port:        v.GetInt(ParamPort),
		TTL:         v.GetInt64(ParamTTL),
		DialTimeout: v.GetDuration(ParamDialTimeout),
		Timeout:     v.GetDuration(ParamTimeout),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	// joining is retried here because rejoin policy is an application
	// decision, the membership manager itself fails fast
	retrier := retry.NewRetrier(v.GetInt(ParamJoinAttempts), 500*time.Millisecond, 5*time.Second)
	if err := retrier.RunContext(context.Background(), node.Join); err != nil {
		return err
	}

	sub := node.Subscribe()
	go func() {
		for message := range sub.Iterator() {
			switch event := message.Payload().(type) {
			case membership.NodeJoined:
				logger.Infof("observed join: %s", event.Node.String())
			case membership.NodeLeft:
				logger.Infof("observed leave: %s", event.Node.String())
			case membership.NodeModified:
				logger.Infof("observed update: %s", event.Node.String())
			}
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Infof("received signal %s, leaving the cluster", sig)
	case err := <-node.Done():
		logger.Errorf("membership stream failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return node.Close(shutdownCtx)
}

func setupConfiguration(args []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("membershipd")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := pflag.NewFlagSet("membershipd", pflag.ContinueOnError)
	cmd.StringSlice(ParamEndpoints, []string{"127.0.0.1:2379"}, "etcd cluster endpoints")
	cmd.String(ParamPrefix, "/nodes/", "Key prefix member records are stored under")
	cmd.String(ParamHost, "127.0.0.1", "Host to advertise")
	cmd.Int(ParamPort, 7000, "Port to advertise")
	cmd.Int64(ParamTTL, 30, "Registration lease TTL in seconds")
	cmd.Duration(ParamDialTimeout, 5*time.Second, "Timeout for etcd connection attempts")
	cmd.Duration(ParamTimeout, 10*time.Second, "Timeout for individual etcd operations")
	cmd.Int(ParamJoinAttempts, 5, "Number of join attempts before giving up")
	cmd.Bool(ParamVerbose, false, "Verbose")

	if err := cmd.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(cmd); err != nil {
		return nil, err
	}
	return v, nil
}
