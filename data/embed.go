package data

import (
	"embed"
	"path"
)

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string

//go:embed demo/*.json
var demo embed.FS

// Demo returns the seed dataset for a record store key
func Demo(name string) ([]byte, bool) {
	b, err := demo.ReadFile(path.Join("demo", name+".json"))
	if err != nil {
		return nil, false
	}
	return b, true
}
