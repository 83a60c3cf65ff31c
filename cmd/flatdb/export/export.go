// Package export copies a flatdb database to a PostgreSQL server.
// Each table becomes a table in a target schema named after the
// database, created in a single transaction.
package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/flatdb-project/flatdb/cmd/flatdb/database"
	"github.com/flatdb-project/flatdb/cmd/flatdb/dbx"
	"github.com/flatdb-project/flatdb/cmd/flatdb/log"
	"github.com/flatdb-project/flatdb/cmd/flatdb/record"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Export writes all tables of a database to the server, each table
// created anew in the target schema.  The export runs in one
// transaction: on any failure nothing is written.
func Export(db *dbx.DB, src *database.Database, schemaName string) error {
	dc, err := dbx.Connect(db)
	if err != nil {
		return err
	}
	defer dbx.Close(dc)
	tx, err := dc.Begin(context.TODO())
	if err != nil {
		return err
	}
	defer dbx.Rollback(tx)
	_, err = tx.Exec(context.TODO(), "CREATE SCHEMA IF NOT EXISTS \""+schemaName+"\"")
	if err != nil {
		return fmt.Errorf("creating schema: %s: %v", schemaName, err)
	}
	_, err = tx.Exec(context.TODO(),
		"COMMENT ON SCHEMA \""+schemaName+"\" IS '"+util.FlatdbVersionString()+"'")
	if err != nil {
		return fmt.Errorf("commenting on schema: %s: %v", schemaName, err)
	}
	for _, name := range src.ShowTables() {
		if err = exportTable(tx, src, schemaName, name); err != nil {
			return err
		}
	}
	if err = tx.Commit(context.TODO()); err != nil {
		return fmt.Errorf("committing export: %v", err)
	}
	return nil
}

func exportTable(tx pgx.Tx, src *database.Database, schemaName, name string) error {
	t, err := src.Table(name)
	if err != nil {
		return err
	}
	schema := t.Describe()
	q := CreateTableSQL(schemaName, name, schema)
	log.Trace("%s", q)
	if _, err = tx.Exec(context.TODO(), q); err != nil {
		return fmt.Errorf("creating table %s: %v", util.JoinSchemaTable(schemaName, name), err)
	}
	insert := InsertSQL(schemaName, name, schema)
	rows, err := t.All()
	if err != nil {
		return err
	}
	var count int64
	for rows.Next() {
		args, err := rowArgs(rows.Row(), schema)
		if err != nil {
			return fmt.Errorf("exporting table %s: %v", name, err)
		}
		if _, err = tx.Exec(context.TODO(), insert, args...); err != nil {
			return fmt.Errorf("writing to table %s: %v", util.JoinSchemaTable(schemaName, name), err)
		}
		count++
	}
	log.Debug("exported table %s: %d rows", name, count)
	return nil
}

// CreateTableSQL returns the DDL for one exported table.
func CreateTableSQL(schemaName, tableName string, schema record.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE " + util.JoinSchemaTable(schemaName, tableName) + " (\n")
	for i, c := range schema {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("    \"" + c.Name + "\" " + types.DataTypeToSQL(c.Type))
	}
	b.WriteString("\n)")
	return b.String()
}

// InsertSQL returns the parameterized insert statement for one
// exported table.
func InsertSQL(schemaName, tableName string, schema record.Schema) string {
	var b strings.Builder
	b.WriteString("INSERT INTO " + util.JoinSchemaTable(schemaName, tableName) + " (")
	for i, c := range schema {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\"" + c.Name + "\"")
	}
	b.WriteString(") VALUES (")
	for i := range schema {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("$" + strconv.Itoa(i+1))
	}
	b.WriteString(")")
	return b.String()
}

// rowArgs converts a row to statement arguments in schema order.
// Numerics and UUIDs are passed as strings and converted by the
// server.
func rowArgs(row record.Row, schema record.Schema) ([]any, error) {
	args := make([]any, 0, len(schema))
	for _, col := range schema {
		v, ok := row.Get(col.Name)
		if !ok {
			return nil, fmt.Errorf("row missing field %q", col.Name)
		}
		switch x := v.(type) {
		case decimal.Decimal:
			args = append(args, x.String())
		case uuid.UUID:
			args = append(args, x.String())
		default:
			args = append(args, x)
		}
	}
	return args, nil
}
