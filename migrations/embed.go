// Package migrations embeds the SQL schema for every supported store.
package migrations

import "embed"

// FS holds one directory of goose migrations per dialect: postgres/ and sqlite/.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
