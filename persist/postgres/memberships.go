package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/openarchive/authz/types"
)

const membershipChannel = "authz_memberships"

var _ types.MembershipPersister = (*MembershipPersister)(nil)

// MembershipPersister implements types.MembershipPersister over PostgreSQL
type MembershipPersister struct {
	store   *Store
	builder squirrel.StatementBuilderType
	ctx     context.Context
}

type membershipPayload struct {
	Member string              `json:"member"`
	Group  string              `json:"group"`
	Method types.PersistMethod `json:"method"`
}

// NewMembershipPersister constructs a membership persister over the store.
// The context bounds the lifetime of every operation issued through it.
func NewMembershipPersister(ctx context.Context, store *Store) *MembershipPersister {
	return &MembershipPersister{
		store:   store,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		ctx:     ctx,
	}
}

// Insert inserts a membership edge
func (p *MembershipPersister) Insert(sub types.Subject, group types.Group) error {
	stmt, args, err := p.builder.Insert("authz.memberships").
		Columns("member", "grp").
		Values(sub.String(), group.String()).
		Suffix("on conflict do nothing").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert membership sql: %w", err)
	}

	tx, err := p.store.pool.Begin(p.ctx)
	if err != nil {
		return fmt.Errorf("begin insert membership: %w", err)
	}
	defer tx.Rollback(p.ctx)

	tag, err := tx.Exec(p.ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	if tag.RowsAffected() > 0 {
		if err := notify(p.ctx, tx, membershipChannel, membershipPayload{
			Member: sub.String(),
			Group:  group.String(),
			Method: types.PersistInsert,
		}); err != nil {
			return err
		}
	}

	return tx.Commit(p.ctx)
}

// Remove a membership edge
func (p *MembershipPersister) Remove(sub types.Subject, group types.Group) error {
	stmt, args, err := p.builder.Delete("authz.memberships").
		Where(squirrel.Eq{"member": sub.String(), "grp": group.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete membership sql: %w", err)
	}

	tx, err := p.store.pool.Begin(p.ctx)
	if err != nil {
		return fmt.Errorf("begin delete membership: %w", err)
	}
	defer tx.Rollback(p.ctx)

	tag, err := tx.Exec(p.ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	if tag.RowsAffected() > 0 {
		if err := notify(p.ctx, tx, membershipChannel, membershipPayload{
			Member: sub.String(),
			Group:  group.String(),
			Method: types.PersistDelete,
		}); err != nil {
			return err
		}
	}

	return tx.Commit(p.ctx)
}

// List all membership edges
func (p *MembershipPersister) List() ([]types.MembershipEdge, error) {
	stmt, args, err := p.builder.Select("member", "grp").
		From("authz.memberships").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select memberships sql: %w", err)
	}

	rows, err := p.store.pool.Query(p.ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select memberships: %w", err)
	}
	defer rows.Close()

	edges := make([]types.MembershipEdge, 0)
	for rows.Next() {
		var member, group string
		if err := rows.Scan(&member, &group); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}

		edge, err := parseEdge(member, group)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

// Watch membership changes published by any writer
func (p *MembershipPersister) Watch(ctx context.Context) (<-chan types.MembershipChange, error) {
	payloads, err := listen(ctx, p.store.pool, membershipChannel)
	if err != nil {
		return nil, err
	}

	changes := make(chan types.MembershipChange)
	go func() {
		defer close(changes)
		for raw := range payloads {
			var payload membershipPayload
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				continue
			}
			edge, err := parseEdge(payload.Member, payload.Group)
			if err != nil {
				continue
			}

			select {
			case changes <- types.MembershipChange{MembershipEdge: edge, Method: payload.Method}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

func parseEdge(member, group string) (types.MembershipEdge, error) {
	sub, err := types.ParseSubject(member)
	if err != nil {
		return types.MembershipEdge{}, fmt.Errorf("parse membership member %q: %w", member, err)
	}
	grp, err := types.ParseSubject(group)
	if err != nil {
		return types.MembershipEdge{}, fmt.Errorf("parse membership group %q: %w", group, err)
	}
	g, ok := grp.(types.Group)
	if !ok {
		return types.MembershipEdge{}, fmt.Errorf("parse membership group %q: %w", group, types.ErrInvalidSubject)
	}

	return types.MembershipEdge{Member: sub, Group: g}, nil
}
