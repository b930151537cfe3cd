package permission

import (
	"sync"
	"testing"

	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		actor    *models.Actor
		perm     string
		expected bool
	}{
		{"Nil actor", nil, CreateContract, false},
		{"Top account with empty set", models.NewActor(1, true), "anything-unlisted", true},
		{"Top account with known name", models.NewActor(1, true), TerminateContract, true},
		{"Granted name", models.NewActor(2, false, ViewReminders, EditContract), EditContract, true},
		{"Missing name", models.NewActor(2, false, ViewReminders), SendNotification, false},
		{"Empty name not granted", models.NewActor(2, false, ViewReminders), "", false},
		{"Nil permission set", &models.Actor{UserID: 3}, ViewReminders, false},
	}

	evaluator := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasPermission(tt.actor, tt.perm))
			assert.Equal(t, tt.expected, evaluator.HasPermission(tt.actor, tt.perm))
		})
	}
}

func TestHasPermission_Concurrent(t *testing.T) {
	actor := models.NewActor(9, false, Catalog()...)
	evaluator := NewEvaluator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range Catalog() {
				assert.True(t, evaluator.HasPermission(actor, name))
			}
			assert.False(t, evaluator.HasPermission(actor, "unknown"))
		}()
	}
	wg.Wait()
}

func TestCatalog_Unique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range Catalog() {
		assert.False(t, seen[name], name)
		seen[name] = true
	}
	assert.Len(t, seen, 9)
}
