//go:build api

package testdb

import (
	"context"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Redis is a throwaway Redis for practice sessions, refresh token families
// and cached profiles.
type Redis struct {
	Container testcontainers.Container
	Addr      string
	Client    *redis.Client
}

// StartRedis runs redis:7-alpine and connects to it.
func StartRedis(ctx context.Context) (*Redis, error) {
	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start redis: %w", err)
	}
	r := &Redis{Container: container}

	host, err := container.Host(ctx)
	if err != nil {
		_ = r.Close(context.Background())
		return nil, err
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		_ = r.Close(context.Background())
		return nil, err
	}

	r.Addr = net.JoinHostPort(host, port.Port())
	r.Client = redis.NewClient(&redis.Options{Addr: r.Addr})
	if err := r.Client.Ping(ctx).Err(); err != nil {
		_ = r.Close(context.Background())
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return r, nil
}

// Truncate drops every key.
func (r *Redis) Truncate(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}

// CountKeys counts keys matching pattern, e.g. "practice_session:*" or
// "auth:refresh_family:*".
func (r *Redis) CountKeys(ctx context.Context, pattern string) (int, error) {
	n := 0
	iter := r.Client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

// Close disconnects and removes the container.
func (r *Redis) Close(ctx context.Context) error {
	if r.Client != nil {
		_ = r.Client.Close()
	}
	return r.Container.Terminate(ctx)
}
