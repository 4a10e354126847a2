package engine

import "github.com/rs/xid"

// generateRunID stamps a run with a globally unique, sortable ID,
// following sarchlab-akita/simulation/builder.go's
// `s.id = xid.New().String()` convention.
func generateRunID() string {
	return xid.New().String()
}
