package netutil

import (
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

var probeHosts = []string{"8.8.8.8:53", "1.1.1.1:53", "google.com:80"}

// ProbeConnectivity dials a few well-known hosts with a short timeout and
// returns true on the first success. Used once at startup to fail fast before
// any storage or mail connection is attempted.
func ProbeConnectivity() bool {
	for _, host := range probeHosts {
		conn, err := net.DialTimeout("tcp", host, 5*time.Second)
		if err != nil {
			continue
		}
		conn.Close()
		return true
	}
	return false
}

// Retry runs op with exponential backoff, up to maxAttempts total attempts.
// It is meant for bootstrap operations only; routine per-call retries would
// mask persistent outages as transient.
func Retry(ctx context.Context, log *logrus.Logger, maxAttempts uint64, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1), ctx)

	return backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		log.WithError(err).Warnf("operation failed, retrying in %s", wait.Round(time.Millisecond))
	})
}
