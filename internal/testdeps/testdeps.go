// Package testdeps starts throwaway backend containers for integration tests.
package testdeps

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcNats "github.com/testcontainers/testcontainers-go/modules/nats"
	tcValKey "github.com/testcontainers/testcontainers-go/modules/valkey"

	"github.com/pitabwire/clientkit/data"
)

const (
	ValKeyImage = "docker.io/valkey/valkey:latest"
	NatsImage   = "nats:latest"
)

// Valkey starts a Valkey container and returns its redis:// DSN.
// The test is skipped in -short mode.
func Valkey(t *testing.T) data.DSN {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container backed test in short mode")
	}

	ctx := t.Context()
	container, err := tcValKey.Run(ctx, ValKeyImage)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start valkey container: %v", err)
	}

	conn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get valkey connection string: %v", err)
	}
	return data.DSN(conn)
}

// Nats starts a JetStream enabled NATS container and returns its nats:// DSN.
// The test is skipped in -short mode.
func Nats(t *testing.T) data.DSN {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container backed test in short mode")
	}

	ctx := t.Context()
	container, err := tcNats.Run(ctx, NatsImage)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start nats container: %v", err)
	}

	conn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get nats connection string: %v", err)
	}
	return data.DSN(conn)
}
