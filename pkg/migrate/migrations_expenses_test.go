package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flokoutapp/flokout-backend/pkg/migrate"
)

func TestExpenseMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_expenses.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no expenses migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS expenses",
		"CREATE TABLE IF NOT EXISTS expense_shares",
		"FOREIGN KEY (flokout_id) REFERENCES flokouts(id) ON DELETE CASCADE",
		"FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE",
		"CHECK (amount > 0)",
		"CHECK (status IN ('pending', 'verifying', 'settled'))",
		"DROP TABLE IF EXISTS expense_shares",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
