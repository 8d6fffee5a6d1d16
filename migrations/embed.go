// Package migrations embeds the ledger schema so binaries can migrate without the source tree.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair in this directory
//
//go:embed *.sql
var FS embed.FS
