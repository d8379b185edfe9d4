package sema

import (
	"fmt"
	"strings"

	"viewck/internal/diag"
	"viewck/internal/symbols"
)

// Options carry everything the checker needs; nothing is read from globals.
type Options struct {
	Reporter diag.Reporter
	// Table is reused when the caller has already resolved the file.
	Table *symbols.Table

	Liveness        Liveness
	DefaultParam    Convention
	DefaultReceiver Convention
	// Frozen lists resilient types whose stored layout is fixed.
	Frozen []string
	// Oracle overrides the field borrowability oracle; nil builds a cached one.
	Oracle BorrowabilityOracle

	// WarnRuntimeChecked reports views over dynamic fields as warnings.
	WarnRuntimeChecked bool
	// RecordEvents keeps the lowered event stream in the result.
	RecordEvents bool
}

// DefaultOptions mirrors an empty viewck.toml.
func DefaultOptions() Options {
	return Options{
		Liveness:        LivenessLastUse,
		DefaultParam:    ConvBorrowing,
		DefaultReceiver: ConvBorrowing,
	}
}

// ParseLiveness accepts "last-use" and "lexical".
func ParseLiveness(s string) (Liveness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-use", "lastuse", "last_use":
		return LivenessLastUse, nil
	case "lexical":
		return LivenessLexical, nil
	default:
		return LivenessLastUse, fmt.Errorf("unknown liveness mode %q (want last-use or lexical)", s)
	}
}

// ParseConvention accepts the three parameter conventions.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "borrowing":
		return ConvBorrowing, nil
	case "consuming":
		return ConvConsuming, nil
	case "mutating":
		return ConvMutating, nil
	default:
		return ConvBorrowing, fmt.Errorf("unknown convention %q (want borrowing, consuming or mutating)", s)
	}
}
