// devdb.go
//
// Record store and permission service for the RealE-Market real estate CRM
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of crmdb.
// crmdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// crmdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with crmdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package devdb starts a disposable MariaDB for development and integration
// tests, initialised with the storage_entries schema.
package devdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/crmdb/data"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Fixed names the embedded init scripts refer to
const (
	Database = "crmdb"
	User     = "crmdb_user"
)

// Options configures the container
type Options struct {
	Image        string
	RootPassword string
	Password     string
}

func (o *Options) defaults() {
	if o.Image == "" {
		o.Image = "mariadb:11"
	}
	if o.RootPassword == "" {
		o.RootPassword = "root"
	}
	if o.Password == "" {
		o.Password = "crmdb"
	}
}

// Container is a running MariaDB
type Container struct {
	Network *testcontainers.DockerNetwork
	DB      testcontainers.Container
	Host    string
	Port    string
	alias   string
	options Options
}

// Start creates a network and a MariaDB container, then runs the embedded
// schema and privilege scripts
func Start(ctx context.Context, opts Options) (*Container, error) {
	opts.defaults()
	c := &Container{options: opts, alias: "crmdb-db-" + uuid.New().String()[:8]}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	c.Network = nw

	tcpDBPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.Image,
			ExposedPorts: []string{string(tcpDBPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": opts.RootPassword,
				"MYSQL_DATABASE":      Database,
			},
			WaitingFor: wait.ForListeningPort(tcpDBPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {c.alias},
			},
		},
		Started: true,
	})
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to start MariaDB: %w", err)
	}
	c.DB = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		c.Terminate(ctx)
		return nil, err
	}
	port, err := dbContainer.MappedPort(ctx, tcpDBPort)
	if err != nil {
		c.Terminate(ctx)
		return nil, err
	}
	c.Host = host
	c.Port = port.Port()

	if err := c.initialize(ctx); err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return c, nil
}

// Config returns service configuration pointing at the container
func (c *Container) Config() config.Config {
	return config.Config{
		StorageDriver:     "sql",
		DBType:            "mariadb",
		DBHost:            c.Host,
		DBPort:            c.Port,
		DBDatabase:        Database,
		DBUser:            User,
		DBPassword:        c.options.Password,
		DBConnectionLimit: 5,
	}
}

// Terminate stops the container and removes the network
func (c *Container) Terminate(ctx context.Context) []error {
	var errs []error
	if c.DB != nil {
		if err := c.DB.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate MariaDB: %w", err))
		}
	}
	if c.Network != nil {
		if err := c.Network.Remove(ctx); err != nil {
			errs = append(errs, fmt.Errorf("remove network: %w", err))
		}
	}
	return errs
}

func (c *Container) initialize(ctx context.Context) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", c.options.RootPassword, c.Host, c.Port))
	if err != nil {
		return err
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", Database),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", User, c.options.Password),
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: when executing > %s", err, stmt)
		}
	}

	if err := executeSQL(ctx, db, data.InitdbMariaDBTables); err != nil {
		return err
	}
	return executeSQL(ctx, db, data.InitdbMariaDBPrivileges)
}

// executeSQL runs a script of semicolon-terminated statements
func executeSQL(ctx context.Context, db *sql.DB, script string) error {
	for _, q := range splitStatements(script) {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%w: when executing > %s", err, q)
		}
	}
	return nil
}

// splitStatements drops -- comments outside quotes and splits on ;
func splitStatements(script string) []string {
	lines := strings.Split(script, "\n")
	stripped := make([]string, 0, len(lines))
	for _, l := range lines {
		stripped = append(stripped, excludeComment(l))
	}

	var queries []string
	for _, q := range strings.Split(strings.Join(stripped, "\n"), ";") {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

func excludeComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '-' && strings.HasPrefix(line[i:], "--"):
			return line[:i]
		}
	}
	return line
}
