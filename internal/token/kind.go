package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit represents an integer literal.
	IntLit

	KwType      // type
	KwFn        // fn
	KwLet       // let
	KwVar       // var
	KwDrop      // drop
	KwReturn    // return
	KwIf        // if
	KwElse      // else
	KwSelf      // self
	KwTrue      // true
	KwFalse     // false
	KwBorrowing // borrowing
	KwConsuming // consuming
	KwMutating  // mutating
	KwDependsOn // dependsOn
	KwScoped    // scoped
	KwResilient // resilient
	KwGet       // get
	KwDynamic   // dynamic

	Colon     // :
	Semicolon // ;
	Comma     // ,
	Dot       // .
	Arrow     // ->
	Assign    // =
	Tilde     // ~
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Ident:       "Ident",
	IntLit:      "IntLit",
	KwType:      "KwType",
	KwFn:        "KwFn",
	KwLet:       "KwLet",
	KwVar:       "KwVar",
	KwDrop:      "KwDrop",
	KwReturn:    "KwReturn",
	KwIf:        "KwIf",
	KwElse:      "KwElse",
	KwSelf:      "KwSelf",
	KwTrue:      "KwTrue",
	KwFalse:     "KwFalse",
	KwBorrowing: "KwBorrowing",
	KwConsuming: "KwConsuming",
	KwMutating:  "KwMutating",
	KwDependsOn: "KwDependsOn",
	KwScoped:    "KwScoped",
	KwResilient: "KwResilient",
	KwGet:       "KwGet",
	KwDynamic:   "KwDynamic",
	Colon:       "Colon",
	Semicolon:   "Semicolon",
	Comma:       "Comma",
	Dot:         "Dot",
	Arrow:       "Arrow",
	Assign:      "Assign",
	Tilde:       "Tilde",
	LParen:      "LParen",
	RParen:      "RParen",
	LBrace:      "LBrace",
	RBrace:      "RBrace",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
