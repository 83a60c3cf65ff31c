package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FlatdbVersion is the version number reported by the flatdb command.
var FlatdbVersion = "1.2.1"

// DatadirVersion is the version of the data directory layout.  It is
// recorded in the configuration file when a data directory is
// initialized and checked whenever the directory is opened.
var DatadirVersion int64 = 1

// ModePermRW is the umask "-rw-------".
const ModePermRW = 0600

// ModePermRWX is the umask "-rwx------".
const ModePermRWX = 0700

// TableFileExtension is the file name extension of stored table files.
const TableFileExtension = ".json"

func FlatdbVersionString() string {
	return "flatdb " + FlatdbVersion
}

func ConfigFileName(datadir string) string {
	return filepath.Join(datadir, "flatdb.conf")
}

func DatabaseDirName(datadir, dbname string) string {
	return filepath.Join(datadir, dbname)
}

func TableFileName(dbdir, table string) string {
	return filepath.Join(dbdir, table+TableFileExtension)
}

// TableFileStem returns the table name encoded in a table file name,
// or "" if the file name does not follow the table file convention.
func TableFileStem(filename string) string {
	if !strings.HasSuffix(filename, TableFileExtension) {
		return ""
	}
	return strings.TrimSuffix(filename, TableFileExtension)
}

// ValidName returns true if s is usable as a database or table name.
// Names become file system path elements and so may not contain
// separators or refer to parent directories.
func ValidName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return false
	}
	return true
}

func JoinSchemaTable(schema, table string) string {
	if schema == "" {
		return fmt.Sprintf("\"%s\"", table)
	} else {
		return fmt.Sprintf("\"%s\".\"%s\"", schema, table)
	}
}

//func RequireFileExists(filename string) error {
//        var err error
//        var ok bool
//        if ok, err = FileExists(filename); err != nil {
//                return err
//        }
//        if !ok {
//                return fmt.Errorf("file not found: %s", filename)
//        }
//        return nil
//}

// FileExists returns true if f is an existing file or directory.
func FileExists(f string) (bool, error) {
	_, err := os.Stat(f)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
