package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/openarchive/authz/types"
)

const policyChannel = "authz_policies"

var _ types.PolicyPersister = (*PolicyPersister)(nil)

// PolicyPersister implements types.PolicyPersister over PostgreSQL
type PolicyPersister struct {
	store   *Store
	builder squirrel.StatementBuilderType
	ctx     context.Context
}

// policyPayload carries the full record so watchers can replay inserts
// and updates without a read back.
type policyPayload struct {
	ID          string              `json:"id"`
	Object      string              `json:"object"`
	Action      uint32              `json:"action"`
	Subject     string              `json:"subject"`
	StartDate   string              `json:"start_date,omitempty"`
	EndDate     string              `json:"end_date,omitempty"`
	Type        string              `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Method      types.PersistMethod `json:"method"`
}

// NewPolicyPersister constructs a policy persister over the store
func NewPolicyPersister(ctx context.Context, store *Store) *PolicyPersister {
	return &PolicyPersister{
		store:   store,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		ctx:     ctx,
	}
}

// Insert inserts a policy row
func (p *PolicyPersister) Insert(policy types.Policy) error {
	stmt, args, err := p.builder.Insert("authz.policies").
		Columns("id", "object", "action", "subject", "start_date", "end_date", "type", "name", "description").
		Values(policy.ID, policy.Object.String(), uint32(policy.Action), policy.Subject.String(),
			boundTime(policy.StartDate), boundTime(policy.EndDate),
			string(policy.Type), policy.Name, policy.Description).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert policy sql: %w", err)
	}

	return p.execAndNotify(stmt, args, payloadOf(policy, types.PersistInsert))
}

// Update replaces the policy row with the same id
func (p *PolicyPersister) Update(policy types.Policy) error {
	stmt, args, err := p.builder.Update("authz.policies").
		Set("subject", policy.Subject.String()).
		Set("start_date", boundTime(policy.StartDate)).
		Set("end_date", boundTime(policy.EndDate)).
		Set("name", policy.Name).
		Set("description", policy.Description).
		Where(squirrel.Eq{"id": policy.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update policy sql: %w", err)
	}

	return p.execAndNotify(stmt, args, payloadOf(policy, types.PersistUpdate))
}

// Remove deletes the policy row by id
func (p *PolicyPersister) Remove(id string) error {
	stmt, args, err := p.builder.Delete("authz.policies").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete policy sql: %w", err)
	}

	return p.execAndNotify(stmt, args, policyPayload{ID: id, Method: types.PersistDelete})
}

func (p *PolicyPersister) execAndNotify(stmt string, args []any, payload policyPayload) error {
	tx, err := p.store.pool.Begin(p.ctx)
	if err != nil {
		return fmt.Errorf("begin policy write: %w", err)
	}
	defer tx.Rollback(p.ctx)

	tag, err := tx.Exec(p.ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("write policy: %w", err)
	}

	if tag.RowsAffected() > 0 {
		if err := notify(p.ctx, tx, policyChannel, payload); err != nil {
			return err
		}
	}

	return tx.Commit(p.ctx)
}

// List all policy rows
func (p *PolicyPersister) List() ([]types.Policy, error) {
	stmt, args, err := p.builder.Select("id", "object", "action", "subject", "start_date", "end_date", "type", "name", "description").
		From("authz.policies").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select policies sql: %w", err)
	}

	rows, err := p.store.pool.Query(p.ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select policies: %w", err)
	}
	defer rows.Close()

	policies := make([]types.Policy, 0)
	for rows.Next() {
		var (
			policy               types.Policy
			object, subject, typ string
			action               uint32
			start, end           *time.Time
		)
		if err := rows.Scan(&policy.ID, &object, &action, &subject, &start, &end, &typ, &policy.Name, &policy.Description); err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}

		if policy.Object, err = types.ParseObject(object); err != nil {
			return nil, fmt.Errorf("parse policy object %q: %w", object, err)
		}
		if policy.Subject, err = types.ParseSubject(subject); err != nil {
			return nil, fmt.Errorf("parse policy subject %q: %w", subject, err)
		}
		policy.Action = types.Action(action)
		policy.Type = types.PolicyType(typ)
		policy.StartDate = timeBound(start)
		policy.EndDate = timeBound(end)

		policies = append(policies, policy)
	}

	return policies, rows.Err()
}

// Watch policy changes published by any writer
func (p *PolicyPersister) Watch(ctx context.Context) (<-chan types.PolicyChange, error) {
	payloads, err := listen(ctx, p.store.pool, policyChannel)
	if err != nil {
		return nil, err
	}

	changes := make(chan types.PolicyChange)
	go func() {
		defer close(changes)
		for raw := range payloads {
			var payload policyPayload
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				continue
			}
			change, err := changeOf(payload)
			if err != nil {
				continue
			}

			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

func payloadOf(policy types.Policy, method types.PersistMethod) policyPayload {
	payload := policyPayload{
		ID:          policy.ID,
		Object:      policy.Object.String(),
		Action:      uint32(policy.Action),
		Subject:     policy.Subject.String(),
		Type:        string(policy.Type),
		Name:        policy.Name,
		Description: policy.Description,
		Method:      method,
	}
	if policy.StartDate != nil {
		payload.StartDate = policy.StartDate.String()
	}
	if policy.EndDate != nil {
		payload.EndDate = policy.EndDate.String()
	}
	return payload
}

func changeOf(payload policyPayload) (types.PolicyChange, error) {
	change := types.PolicyChange{Method: payload.Method}
	change.Policy.ID = payload.ID

	if payload.Method == types.PersistDelete {
		return change, nil
	}

	var err error
	if change.Policy.Object, err = types.ParseObject(payload.Object); err != nil {
		return change, err
	}
	if change.Policy.Subject, err = types.ParseSubject(payload.Subject); err != nil {
		return change, err
	}
	change.Policy.Action = types.Action(payload.Action)
	change.Policy.Type = types.PolicyType(payload.Type)
	change.Policy.Name = payload.Name
	change.Policy.Description = payload.Description

	if payload.StartDate != "" {
		date, err := types.ParseDate(payload.StartDate)
		if err != nil {
			return change, err
		}
		change.Policy.StartDate = &date
	}
	if payload.EndDate != "" {
		date, err := types.ParseDate(payload.EndDate)
		if err != nil {
			return change, err
		}
		change.Policy.EndDate = &date
	}

	return change, nil
}

func boundTime(d *types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}

func timeBound(t *time.Time) *types.Date {
	if t == nil {
		return nil
	}
	d := types.DateOf(*t)
	return &d
}
