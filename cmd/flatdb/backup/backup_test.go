package backup

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/flatdb-project/flatdb/cmd/flatdb/database"
	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/record"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
	"github.com/pierrec/lz4/v4"
)

func makeTestDatabase(t *testing.T, datadir string) *database.Database {
	t.Helper()
	db, err := database.Create(datadir, "shop")
	if err != nil {
		t.Fatal(err)
	}
	users, err := db.CreateTable("users", record.Schema{
		{Name: "name", Type: types.StringType},
		{Name: "age", Type: types.IntegerType},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = users.Insert("Ana", 30); err != nil {
		t.Fatal(err)
	}
	if err = users.Insert("Bo", 31); err != nil {
		t.Fatal(err)
	}
	items, err := db.CreateTable("items", record.Schema{
		{Name: "sku", Type: types.StringType},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = items.Insert("A-100"); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestBackupRestore(t *testing.T) {
	srcdir := t.TempDir()
	db := makeTestDatabase(t, srcdir)

	var buf bytes.Buffer
	if err := Backup(db.Dir(), &buf); err != nil {
		t.Fatal(err)
	}

	dstdir := t.TempDir()
	if err := Restore(&buf, dstdir, "shop"); err != nil {
		t.Fatal(err)
	}
	restored, err := database.Connect(dstdir, "shop")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"items", "users"}
	if got := restored.ShowTables(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
	users, err := restored.Table("users")
	if err != nil {
		t.Fatal(err)
	}
	n, err := users.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("got %v; want %v", n, 2)
	}
	rows, err := users.Query(map[string]any{"name": "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if !rows.Next() {
		t.Fatal("no matching rows")
	}
	age, _ := rows.Row().Get("age")
	if age != int64(30) {
		t.Errorf("got %v; want %v", age, int64(30))
	}
}

func TestBackupSkipsStrayFiles(t *testing.T) {
	srcdir := t.TempDir()
	db := makeTestDatabase(t, srcdir)
	if err := os.WriteFile(filepath.Join(db.Dir(), "README.txt"), []byte("notes\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Backup(db.Dir(), &buf); err != nil {
		t.Fatal(err)
	}

	dstdir := t.TempDir()
	if err := Restore(&buf, dstdir, "shop"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dstdir, "shop", "README.txt")); !os.IsNotExist(err) {
		t.Errorf("stray file restored: %v", err)
	}
}

func TestRestoreExisting(t *testing.T) {
	srcdir := t.TempDir()
	db := makeTestDatabase(t, srcdir)

	var buf bytes.Buffer
	if err := Backup(db.Dir(), &buf); err != nil {
		t.Fatal(err)
	}

	err := Restore(&buf, srcdir, "shop")
	if err == nil {
		t.Fatal("want error")
	}
	if !dberr.IsValidation(err) {
		t.Errorf("got %v; want validation error", err)
	}
	if got, want := err.Error(), "Database with name \"shop\" already exists."; got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestRestoreRejectsTraversal(t *testing.T) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	content := []byte(`{"columns":[{"name":"a","type":"string"}],"rows":[]}`)
	hdr := &tar.Header{
		Name:     "../evil.json",
		Mode:     0600,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	datadir := t.TempDir()
	if err := Restore(&buf, datadir, "shop"); err == nil {
		t.Errorf("got %v; want error", err)
	}
	if _, err := os.Stat(filepath.Join(datadir, "evil.json")); !os.IsNotExist(err) {
		t.Errorf("file escaped the database directory: %v", err)
	}
}

func TestRestoreRejectsNonTableEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	content := []byte("notes\n")
	hdr := &tar.Header{
		Name:     "README.txt",
		Mode:     0600,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	if err := Restore(&buf, t.TempDir(), "shop"); err == nil {
		t.Errorf("got %v; want error", err)
	}
}
