package testutil

import (
	"database/sql"
	"embed"
	"strings"
	"testing"

	"github.com/mazen160/go-random"
	_ "modernc.org/sqlite"
)

//go:embed fixtures/*.html
var fixtures embed.FS

// Fixture returns the contents of one of the embedded listing pages.
func Fixture(name string) string {
	content, err := fixtures.ReadFile("fixtures/" + name)
	if err != nil {
		panic(err)
	}
	return string(content)
}

// OpenMemoryDB opens an in-memory sqlite database with schema applied.
func OpenMemoryDB(t testing.TB, schema string) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a different database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	return db
}

func RandomString(t testing.TB, length int) string {
	value, err := random.String(length)
	if err != nil {
		t.Fatal(err)
	}
	return value
}
