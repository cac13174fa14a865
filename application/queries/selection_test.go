package queries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trustie-admin/application/ports"
	"trustie-admin/application/queries"
)

func TestNewSelection(t *testing.T) {
	tests := []struct {
		name     string
		hits     []ports.SearchHit
		emptyID  string
		state    queries.SelectionState
		selected string
	}{
		{name: "no hits", state: queries.SelectionNone},
		{name: "no events selects null", emptyID: queries.NullSelection, state: queries.SelectionNone, selected: "null"},
		{
			name:     "single hit is preselected",
			hits:     []ports.SearchHit{{"userId": "u-1", "name": "Ada"}},
			state:    queries.SelectionSingle,
			selected: "u-1",
		},
		{
			name:  "several hits select nothing",
			hits:  []ports.SearchHit{{"userId": "u-1"}, {"userId": "u-2"}},
			state: queries.SelectionMultiple,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := queries.NewSelection(tt.hits, tt.emptyID, "userId")
			assert.Equal(t, tt.state, sel.State)
			assert.Equal(t, tt.selected, sel.SelectedID)
			assert.NotNil(t, sel.Results)
		})
	}
}

func TestNewSelectionFallsBackToLaterKeys(t *testing.T) {
	sel := queries.NewSelection([]ports.SearchHit{{"userId": "flash_1"}}, queries.NullSelection, "eventId", "userId")
	assert.Equal(t, "flash_1", sel.SelectedID)
}
