package integration_test

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func loadRunCounts(t *testing.T, dbPath string) map[string]int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open history db: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.Query("SELECT command, COUNT(*) FROM runs GROUP BY command")
	if err != nil {
		t.Fatalf("query history runs: %v", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var command string
		var count int
		if err := rows.Scan(&command, &count); err != nil {
			t.Fatalf("scan history run: %v", err)
		}
		counts[command] = count
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate history runs: %v", err)
	}
	return counts
}
