package util

import (
	"path/filepath"
	"testing"
)

var validNameTests = []struct {
	in  string
	out bool
}{
	{"", false},
	{".", false},
	{"..", false},
	{"...", true},
	{"users", true},
	{"Users", true},
	{"user_accounts", true},
	{"user accounts", true},
	{"users/", false},
	{"/users", false},
	{"../users", false},
	{"a/b", false},
	{"a\\b", false},
	{"users.json", true},
}

func TestValidName(t *testing.T) {
	for _, tt := range validNameTests {
		t.Run(tt.in, func(t *testing.T) {
			got := ValidName(tt.in)
			if got != tt.out {
				t.Errorf("got %v; want %v", got, tt.out)
			}
		})
	}
}

var tableFileStemTests = []struct {
	in  string
	out string
}{
	{"users.json", "users"},
	{"users.JSON", ""},
	{"users", ""},
	{"users.json.bak", ""},
	{".json", ""},
	{"a.b.json", "a.b"},
}

func TestTableFileStem(t *testing.T) {
	for _, tt := range tableFileStemTests {
		t.Run(tt.in, func(t *testing.T) {
			got := TableFileStem(tt.in)
			if got != tt.out {
				t.Errorf("got %q; want %q", got, tt.out)
			}
		})
	}
}

func TestTableFileName(t *testing.T) {
	got := TableFileName(filepath.Join("data", "mydb"), "users")
	want := filepath.Join("data", "mydb", "users.json")
	if got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := FileExists(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("got %v; want %v", ok, true)
	}
	ok, err = FileExists(filepath.Join(dir, "nonexistent"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("got %v; want %v", ok, false)
	}
}

var joinSchemaTableTests = []struct {
	schema string
	table  string
	out    string
}{
	{"", "users", "\"users\""},
	{"mydb", "users", "\"mydb\".\"users\""},
}

func TestJoinSchemaTable(t *testing.T) {
	for _, tt := range joinSchemaTableTests {
		t.Run(tt.schema+"."+tt.table, func(t *testing.T) {
			got := JoinSchemaTable(tt.schema, tt.table)
			if got != tt.out {
				t.Errorf("got %q; want %q", got, tt.out)
			}
		})
	}
}
