package reconciler

import (
	"fmt"

	"github.com/shelfmark/refsync/pkg/papers"
)

// ActionType classifies what the executor should do for one paper.
type ActionType string

const (
	// ActionCreate creates a new target record for the paper.
	ActionCreate ActionType = "create"

	// ActionUpdate patches the linked record's source-owned properties.
	ActionUpdate ActionType = "update"

	// ActionSkip leaves the target untouched for this paper.
	ActionSkip ActionType = "skip"
)

// Action is one planned write (or non-write) for one paper. Every paper
// in the source snapshot yields exactly one action.
type Action struct {
	Type  ActionType
	Paper papers.Paper

	// RecordID is the linked target record, set for updates only.
	RecordID string

	// Reason explains a skip.
	Reason string
}

// Create plans a new record for the paper.
func Create(paper papers.Paper) Action {
	return Action{Type: ActionCreate, Paper: paper}
}

// Update plans a patch of the linked record.
func Update(paper papers.Paper, recordID string) Action {
	return Action{Type: ActionUpdate, Paper: paper, RecordID: recordID}
}

// Skip plans no write for the paper.
func Skip(paper papers.Paper, reason string) Action {
	return Action{Type: ActionSkip, Paper: paper, Reason: reason}
}

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a.Type {
	case ActionUpdate:
		return fmt.Sprintf("update %s -> %s", a.Paper.Key, a.RecordID)
	case ActionSkip:
		return fmt.Sprintf("skip %s (%s)", a.Paper.Key, a.Reason)
	default:
		return fmt.Sprintf("%s %s", a.Type, a.Paper.Key)
	}
}
