package sema

import (
	"testing"

	"viewck/internal/symbols"
)

const holderDecls = `
type Holder { get data: Array; items: Array; dynamic extra: Array; }
type Remote resilient { items: Array; }
`

func TestCachedOracleAnswers(t *testing.T) {
	c := check(t, holderDecls)
	wantClean(t, c)
	table := c.res.Table
	intern := table.Strings.Intern
	holder, _ := table.LookupType(intern("Holder"))
	remote, _ := table.LookupType(intern("Remote"))

	tests := []struct {
		name   string
		owner  symbols.TypeID
		field  string
		caller symbols.TypeID
		frozen []string
		want   Borrowability
	}{
		{"getter", holder, "data", holder, nil, NeverBorrowable},
		{"stored", holder, "items", symbols.NoTypeID, nil, AlwaysBorrowable},
		{"dynamic", holder, "extra", symbols.NoTypeID, nil, BorrowableAtRuntimeBestEffort},
		{"resilient outside", remote, "items", holder, nil, NeverBorrowable},
		{"resilient inside", remote, "items", remote, nil, AlwaysBorrowable},
		{"resilient frozen", remote, "items", symbols.NoTypeID, []string{"Remote"}, AlwaysBorrowable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewCachedOracle(table, tt.frozen)
			got := o.GuaranteesBorrowableAccess(tt.owner, intern(tt.field), CallerContext{Type: tt.caller})
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOracleCachesPerCaller(t *testing.T) {
	c := check(t, holderDecls+`
fn Holder.a(self) -> Int { return self.items.count(); }
fn Holder.b(self) -> Int { return self.items.count(); }
fn free(h: Holder) -> Int { return h.items.count(); }
`)
	wantClean(t, c)
	if c.res.OracleHits != 1 || c.res.OracleMisses != 2 {
		t.Fatalf("hits=%d misses=%d", c.res.OracleHits, c.res.OracleMisses)
	}
}
