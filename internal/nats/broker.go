// Package nats runs the embedded, in-process NATS server with JetStream
// that persists the estimate history.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding every recorded estimate.
	StreamName = "estimatr_estimates"

	subjectPrefix = "estimatr.estimates"
	retention     = 365 * 24 * time.Hour
)

// SubjectAll matches the estimates of every city.
const SubjectAll = subjectPrefix + ".>"

// SubjectForCity returns the subject estimates for city are published on.
// Example: "Casablanca Anfa" -> "estimatr.estimates.casablanca-anfa"
func SubjectForCity(city string) string {
	s := slug.Make(city)
	if s == "" {
		s = "unknown"
	}
	return fmt.Sprintf("%s.%s", subjectPrefix, s)
}

// Broker bundles the embedded server, its in-process connection and the
// JetStream context.
type Broker struct {
	ns *server.Server
	nc *nats.Conn
	js jetstream.JetStream
}

// Open starts an embedded JetStream server storing its data under dataDir
// and connects to it in-process. No network port is opened.
func Open(dataDir string) (*Broker, error) {
	ns, err := StartEmbeddedNATS(dataDir)
	if err != nil {
		return nil, err
	}

	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	return &Broker{ns: ns, nc: nc, js: js}, nil
}

// JetStream returns the JetStream context.
func (b *Broker) JetStream() jetstream.JetStream { return b.js }

// Close drains the connection and stops the server.
func (b *Broker) Close() error {
	return Shutdown(b.nc, b.ns)
}

// SetupStream creates or updates the estimates stream.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectAll},
		Storage:  jetstream.FileStorage,
		MaxAge:   retention,
	})
}

// StartEmbeddedNATS starts a JetStream-enabled server with file storage in
// dataDir and waits until it accepts connections.
func StartEmbeddedNATS(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
		NoSigs:     true,
	})
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		logger.Error("NATS server failed to start within 4s timeout")
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}
	return ns, nil
}

// ConnectInProcess connects to ns without going through the network stack.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, err
	}
	return conn, nil
}

// Shutdown drains nc, then stops ns. Either may be nil.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		done := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			logger.Error("NATS server shutdown timed out after 5s")
			return errors.New("NATS server shutdown timed out")
		}
	}

	logger.Debug("NATS shutdown complete")
	return nil
}
