// Package database implements the database catalog.  A database is a
// directory under the data directory, and every table file in it is
// one table.  The catalog is built by scanning the directory when the
// database is opened; tables created later are appended to it.
package database

import (
	"fmt"
	"os"

	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/log"
	"github.com/flatdb-project/flatdb/cmd/flatdb/record"
	"github.com/flatdb-project/flatdb/cmd/flatdb/table"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
)

type Database struct {
	name     string
	dirpath  string
	tables   []string
	tableMap map[string]*table.Table
}

// Create makes a new database directory under the data directory and
// opens it.  It fails if a database with the same name already
// exists.
func Create(datadir, name string) (*Database, error) {
	if !util.ValidName(name) {
		return nil, dberr.Validation("invalid database name %q", name)
	}
	dir := util.DatabaseDirName(datadir, name)
	exists, err := util.FileExists(dir)
	if err != nil {
		return nil, dberr.Storage(err, "checking database directory %s", dir)
	}
	if exists {
		return nil, dberr.Validation("Database with name %q already exists.", name)
	}
	if err = os.Mkdir(dir, util.ModePermRWX); err != nil {
		return nil, dberr.Storage(err, "creating database directory %s", dir)
	}
	log.Debug("created database directory: %s", dir)
	return Connect(datadir, name)
}

// Connect opens an existing database and discovers its tables.  A
// missing database directory surfaces the file system error.
func Connect(datadir, name string) (*Database, error) {
	if !util.ValidName(name) {
		return nil, dberr.Validation("invalid database name %q", name)
	}
	d := &Database{
		name:     name,
		dirpath:  util.DatabaseDirName(datadir, name),
		tableMap: make(map[string]*table.Table),
	}
	if err := d.readTables(); err != nil {
		return nil, err
	}
	return d, nil
}

// readTables scans the database directory for table files and opens
// each one with its persisted schema.  Directory entries that do not
// follow the table file naming convention are ignored.
func (d *Database) readTables() error {
	entries, err := os.ReadDir(d.dirpath)
	if err != nil {
		return dberr.Storage(err, "reading database directory %s", d.dirpath)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := util.TableFileStem(e.Name())
		if name == "" {
			continue
		}
		t, err := table.Open(d.dirpath, name, nil)
		if err != nil {
			return err
		}
		d.tables = append(d.tables, name)
		d.tableMap[name] = t
	}
	log.Debug("database %q: %d tables", d.name, len(d.tables))
	return nil
}

func (d *Database) Name() string {
	return d.name
}

func (d *Database) Dir() string {
	return d.dirpath
}

// CreateTable creates a new table with the given schema and adds it
// to the catalog.  It fails if the name is already in the catalog.
func (d *Database) CreateTable(name string, schema record.Schema) (*table.Table, error) {
	if !util.ValidName(name) {
		return nil, dberr.Validation("invalid table name %q", name)
	}
	if _, ok := d.tableMap[name]; ok {
		return nil, dberr.Validation("Table with name %q already exists.", name)
	}
	t, err := table.Open(d.dirpath, name, schema)
	if err != nil {
		return nil, err
	}
	d.tables = append(d.tables, name)
	d.tableMap[name] = t
	return t, nil
}

// Table returns the named table from the catalog.
func (d *Database) Table(name string) (*table.Table, error) {
	t, ok := d.tableMap[name]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", name)
	}
	return t, nil
}

// ShowTables returns the table names in the catalog: discovered
// tables in directory order, then created tables in creation order.
func (d *Database) ShowTables() []string {
	return append([]string(nil), d.tables...)
}
