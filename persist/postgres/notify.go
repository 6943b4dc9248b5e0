package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notify publishes a change payload on the channel inside the transaction,
// so only committed changes reach watchers.
func notify(ctx context.Context, tx pgx.Tx, channel string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}

	if _, err := tx.Exec(ctx, "select pg_notify($1, $2)", channel, string(raw)); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}

// listen holds a dedicated connection on the channel and forwards raw
// payloads until the context is done.
func listen(ctx context.Context, pool *pgxpool.Pool, channel string) (<-chan string, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "listen "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	payloads := make(chan string)
	go func() {
		defer close(payloads)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				return
			}

			select {
			case payloads <- notification.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return payloads, nil
}
