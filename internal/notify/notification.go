// Package notify fans committed mutations out to observers.
//
// Two channels exist side by side and always carry the same payload:
//
//   - Registry holds one-shot long-poll waiters. Each waiter receives at
//     most one notification and is retired on fulfillment, timeout or
//     disconnect.
//   - Bus and Hub form the push path: every committed mutation is published
//     on a topic named after the mutation kind, and stream subscribers
//     receive every notification for the topics they follow until they
//     disconnect.
//
// Broadcaster is the single entry point the mutation pipeline calls after a
// commit; it feeds both channels.
package notify

import "github.com/ChiriacCasian/eventorganizer/internal/models"

// Kind identifies the mutation that produced a notification. Kinds double
// as push topic names.
type Kind string

const (
	KindAdd    Kind = "add"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindImport Kind = "import"
)

// Kinds lists every mutation kind, in the order the pipeline defines them.
var Kinds = []Kind{KindAdd, KindUpdate, KindDelete, KindImport}

// ValidKind reports whether s names a mutation kind.
func ValidKind(s string) bool {
	for _, k := range Kinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Notification is the payload delivered to observers: which mutation
// committed and the aggregate as it was committed (for deletes, as it was
// removed).
type Notification struct {
	Kind  Kind          `json:"kind"`
	Event *models.Event `json:"event"`
}
