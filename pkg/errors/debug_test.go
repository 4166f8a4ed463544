package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpIncludesPostgresDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_customers_phone", TableName: "customers"}
	err := Wrap(CodeConflict, fmt.Errorf("insert customer: %w", pgErr), "customer exists")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.Postgres == nil || dump.Postgres.Constraint != "ux_customers_phone" {
		t.Fatalf("expected postgres detail, got %+v", dump.Postgres)
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("expected unwrap chain, got %v", dump.Chain)
	}

	fields := dump.Fields()
	if fields["pg_code"] != "23505" {
		t.Fatalf("expected pg_code field, got %v", fields["pg_code"])
	}
}

func TestDumpWithoutPostgresOmitsFields(t *testing.T) {
	dump := Dump(Wrap(CodeDependency, fmt.Errorf("redis down"), "publish"))
	if !dump.Retryable {
		t.Fatal("expected dependency errors to be retryable")
	}
	if _, ok := dump.Fields()["pg_code"]; ok {
		t.Fatal("expected no postgres fields")
	}
	if got := Dump(nil); got.TopMessage != "" || got.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", got)
	}
}
