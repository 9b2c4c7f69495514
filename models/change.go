package models

import (
	"encoding/json"
	"time"
)

// EntityType identifies which domain collection a change belongs to.
// The set is fixed; the sync engine treats payloads as opaque and only
// routes them by this value.
type EntityType string

const (
	EntityAccount     EntityType = "account"
	EntityTransaction EntityType = "transaction"
	EntityCategory    EntityType = "category"
	EntityBudget      EntityType = "budget"
	EntityGoal        EntityType = "goal"
	EntityLoan        EntityType = "loan"
	EntityInvestment  EntityType = "investment"
)

// EntityTypes lists every known entity type in a stable order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityAccount,
		EntityTransaction,
		EntityCategory,
		EntityBudget,
		EntityGoal,
		EntityLoan,
		EntityInvestment,
	}
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityAccount, EntityTransaction, EntityCategory, EntityBudget,
		EntityGoal, EntityLoan, EntityInvestment:
		return true
	}
	return false
}

// Operation is the kind of mutation a change describes.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Valid reports whether op is one of CREATE, UPDATE or DELETE.
func (op Operation) Valid() bool {
	return op == OperationCreate || op == OperationUpdate || op == OperationDelete
}

// Change is a single entity mutation on the wire: either a remote change
// returned by pull/full-sync, or the mutation half of a queued local edit.
// Timestamp is server-assigned and only set on changes coming from the
// server; the client never fabricates it.
type Change struct {
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Operation  Operation       `json:"operation"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  int64           `json:"timestamp,omitempty"`
}

// PendingChange is a locally recorded mutation that has not yet been
// acknowledged by the server. It is durable: the queue survives restarts,
// and an entry leaves the queue only on a confirmed acknowledgement.
type PendingChange struct {
	// ID is a locally generated identifier, unique and immutable for the
	// lifetime of the queue entry. The server echoes it back in
	// acknowledgements.
	ID string `json:"id"`

	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Operation  Operation       `json:"operation"`
	Payload    json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the client-side timestamp of the local mutation.
	CreatedAt time.Time `json:"created_at"`

	// RetryCount is the number of failed push attempts this entry has
	// survived. It only ever increases.
	RetryCount int `json:"retry_count"`
}

// AsChange projects the mutation half of a pending change, dropping the
// queue bookkeeping fields.
func (p PendingChange) AsChange() Change {
	return Change{
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Operation:  p.Operation,
		Payload:    p.Payload,
	}
}
