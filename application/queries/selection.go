package queries

import (
	"fmt"

	"trustie-admin/application/ports"
)

// SelectionState describes how many hits a search returned
type SelectionState string

const (
	SelectionNone     SelectionState = "none"
	SelectionSingle   SelectionState = "single"
	SelectionMultiple SelectionState = "multiple"
)

// NullSelection is the id the publish form submits when nothing matched
const NullSelection = "null"

// Selection is a search result plus the entry the dashboard preselects
type Selection struct {
	Results    []ports.SearchHit `json:"results"`
	State      SelectionState    `json:"state"`
	SelectedID string            `json:"selectedId,omitempty"`
}

// NewSelection preselects the only hit when there is exactly one. idKeys name
// the id attributes of a hit, first present wins; emptyID is used when there
// are no hits.
func NewSelection(hits []ports.SearchHit, emptyID string, idKeys ...string) Selection {
	if hits == nil {
		hits = []ports.SearchHit{}
	}
	sel := Selection{Results: hits}
	switch len(hits) {
	case 0:
		sel.State = SelectionNone
		sel.SelectedID = emptyID
	case 1:
		sel.State = SelectionSingle
		for _, key := range idKeys {
			if id, ok := hits[0][key]; ok && id != nil {
				sel.SelectedID = fmt.Sprint(id)
				break
			}
		}
	default:
		sel.State = SelectionMultiple
	}
	return sel
}
