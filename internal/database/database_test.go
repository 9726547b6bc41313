package database

import "testing"

func TestRebind(t *testing.T) {
	q := "SELECT id FROM users WHERE email = ? AND status = ? LIMIT ?"
	if got := SQLite.Rebind(q); got != q {
		t.Errorf("sqlite should not rewrite, got %q", got)
	}
	if got := MySQL.Rebind(q); got != q {
		t.Errorf("mysql should not rewrite, got %q", got)
	}
	want := "SELECT id FROM users WHERE email = $1 AND status = $2 LIMIT $3"
	if got := Postgres.Rebind(q); got != want {
		t.Errorf("postgres rebind: got %q, want %q", got, want)
	}
}

func TestParseDialect(t *testing.T) {
	for _, in := range []string{"mysql", "Postgres", "SQLITE"} {
		if _, err := ParseDialect(in); err != nil {
			t.Errorf("ParseDialect(%q): %v", in, err)
		}
	}
	if _, err := ParseDialect("mssql"); err == nil {
		t.Error("expected error for mssql")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, dialect := NewTestDB(t)

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Fatalf("expected version %d, got %d", len(migrations), v)
	}

	if err := Migrate(db, dialect); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	v2, _ := SchemaVersion(db)
	if v2 != v {
		t.Fatalf("version changed on re-run: %d -> %d", v, v2)
	}
}

func TestEveryDialectHasTypes(t *testing.T) {
	for _, d := range []Dialect{MySQL, Postgres, SQLite} {
		r, ok := typeTokens[d]
		if !ok {
			t.Fatalf("no type tokens for %s", d)
		}
		for _, m := range migrations {
			for _, stmt := range m {
				out := r.Replace(stmt)
				if containsToken(out) {
					t.Fatalf("%s: unreplaced token in %q", d, out)
				}
			}
		}
	}
}

func containsToken(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && s[i+1] == '{' {
			return true
		}
	}
	return false
}
