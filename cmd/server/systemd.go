package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// errNoNotifySocket means the process was not started as a Type=notify unit.
var errNoNotifySocket = errors.New("NOTIFY_SOCKET not set")

// readyState tells systemd the API is accepting requests and which
// extractor backs /api/vital-signs/extract.
func readyState(extractor string) []string {
	return []string{"READY=1", "STATUS=serving, extractor=" + extractor}
}

// stoppingState is sent once the readiness gate closes.
var stoppingState = []string{"STOPPING=1", "STATUS=draining"}

// sdNotify writes one datagram of newline separated assignments to the
// socket named by NOTIFY_SOCKET.
func sdNotify(state ...string) error {
	addr := os.Getenv("NOTIFY_SOCKET")
	if addr == "" {
		return errNoNotifySocket
	}
	if len(state) == 0 {
		return nil
	}
	conn, err := net.Dial("unixgram", addr) //nolint:gosec,noctx // addr comes from systemd, unixgram dial has no context variant
	if err != nil {
		return fmt.Errorf("sd_notify dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()
	if _, err := conn.Write([]byte(strings.Join(state, "\n"))); err != nil {
		return fmt.Errorf("sd_notify write: %w", err)
	}
	return nil
}
