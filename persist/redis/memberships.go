// Package redis persists membership edges in Redis sets and feeds Watch
// channels from pub/sub, so every process sharing the database converges
// on the same membership graph.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/openarchive/authz/types"
)

const defaultPrefix = "authz"

var _ types.MembershipPersister = (*MembershipPersister)(nil)

// MembershipPersister implements types.MembershipPersister over Redis
type MembershipPersister struct {
	client *red.Client
	prefix string
	ctx    context.Context
}

type membershipMessage struct {
	Member string              `json:"member"`
	Group  string              `json:"group"`
	Method types.PersistMethod `json:"method"`
}

// NewMembershipPersister wires a Redis client into a membership persister.
// The context bounds the lifetime of every operation issued through it.
func NewMembershipPersister(ctx context.Context, client *red.Client, keyPrefix string) *MembershipPersister {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &MembershipPersister{client: client, prefix: prefix, ctx: ctx}
}

func (p *MembershipPersister) key(member types.Subject) string {
	return p.prefix + ":membership:" + member.String()
}

func (p *MembershipPersister) channel() string {
	return p.prefix + ":membership:changes"
}

// Insert inserts a membership edge
func (p *MembershipPersister) Insert(sub types.Subject, group types.Group) error {
	added, err := p.client.SAdd(p.ctx, p.key(sub), group.String()).Result()
	if err != nil {
		return fmt.Errorf("redis add membership: %w", err)
	}
	if added == 0 {
		return nil
	}

	return p.publish(membershipMessage{
		Member: sub.String(),
		Group:  group.String(),
		Method: types.PersistInsert,
	})
}

// Remove a membership edge
func (p *MembershipPersister) Remove(sub types.Subject, group types.Group) error {
	removed, err := p.client.SRem(p.ctx, p.key(sub), group.String()).Result()
	if err != nil {
		return fmt.Errorf("redis remove membership: %w", err)
	}
	if removed == 0 {
		return nil
	}

	return p.publish(membershipMessage{
		Member: sub.String(),
		Group:  group.String(),
		Method: types.PersistDelete,
	})
}

// List all membership edges
func (p *MembershipPersister) List() ([]types.MembershipEdge, error) {
	pattern := p.prefix + ":membership:*"
	edges := make([]types.MembershipEdge, 0)

	iter := p.client.Scan(p.ctx, 0, pattern, 0).Iterator()
	for iter.Next(p.ctx) {
		key := iter.Val()
		member := strings.TrimPrefix(key, p.prefix+":membership:")

		sub, err := types.ParseSubject(member)
		if err != nil {
			return nil, fmt.Errorf("parse membership member %q: %w", member, err)
		}

		groups, err := p.client.SMembers(p.ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis list membership %s: %w", key, err)
		}
		for _, raw := range groups {
			grp, err := types.ParseSubject(raw)
			if err != nil {
				return nil, fmt.Errorf("parse membership group %q: %w", raw, err)
			}
			group, ok := grp.(types.Group)
			if !ok {
				return nil, fmt.Errorf("parse membership group %q: %w", raw, types.ErrInvalidSubject)
			}
			edges = append(edges, types.MembershipEdge{Member: sub, Group: group})
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan memberships: %w", err)
	}

	return edges, nil
}

// Watch membership changes published by any writer
func (p *MembershipPersister) Watch(ctx context.Context) (<-chan types.MembershipChange, error) {
	sub := p.client.Subscribe(ctx, p.channel())
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("redis subscribe memberships: %w", err)
	}

	changes := make(chan types.MembershipChange)
	go func() {
		defer close(changes)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var payload membershipMessage
				if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
					continue
				}
				member, err := types.ParseSubject(payload.Member)
				if err != nil {
					continue
				}
				grp, err := types.ParseSubject(payload.Group)
				if err != nil {
					continue
				}
				group, ok := grp.(types.Group)
				if !ok {
					continue
				}

				select {
				case changes <- types.MembershipChange{
					MembershipEdge: types.MembershipEdge{Member: member, Group: group},
					Method:         payload.Method,
				}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

func (p *MembershipPersister) publish(msg membershipMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal membership message: %w", err)
	}

	if err := p.client.Publish(p.ctx, p.channel(), raw).Err(); err != nil {
		return fmt.Errorf("redis publish membership change: %w", err)
	}
	return nil
}
