package devserver

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwallet/finwallet/models"
)

// Seed populates the state with a small realistic data set so a freshly
// connected client has something to pull.
func (s *State) Seed() {
	checking := models.Account{
		ID:       uuid.NewString(),
		Name:     "Checking",
		Type:     "checking",
		Currency: "EUR",
		Balance:  decimal.RequireFromString("2450.75"),
	}
	groceries := models.Category{
		ID:   uuid.NewString(),
		Name: "Groceries",
		Icon: "cart",
	}
	budget := models.Budget{
		ID:         uuid.NewString(),
		CategoryID: groceries.ID,
		Period:     "monthly",
		Limit:      decimal.RequireFromString("450.00"),
	}
	tx := models.Transaction{
		ID:         uuid.NewString(),
		AccountID:  checking.ID,
		CategoryID: groceries.ID,
		Date:       time.Now().UTC().AddDate(0, 0, -1),
		Amount:     decimal.RequireFromString("-32.18"),
		Note:       "weekly shop",
	}
	goal := models.Goal{
		ID:     uuid.NewString(),
		Name:   "Emergency fund",
		Target: decimal.RequireFromString("5000.00"),
		Saved:  decimal.RequireFromString("1200.00"),
	}

	s.Mutate(seedChange(models.EntityAccount, checking.ID, checking))
	s.Mutate(seedChange(models.EntityCategory, groceries.ID, groceries))
	s.Mutate(seedChange(models.EntityBudget, budget.ID, budget))
	s.Mutate(seedChange(models.EntityTransaction, tx.ID, tx))
	s.Mutate(seedChange(models.EntityGoal, goal.ID, goal))
}

func seedChange(entityType models.EntityType, id string, entity any) models.Change {
	payload, err := json.Marshal(entity)
	if err != nil {
		panic(err) // static seed data, cannot fail
	}
	return models.Change{
		EntityType: entityType,
		EntityID:   id,
		Operation:  models.OperationCreate,
		Payload:    payload,
	}
}
