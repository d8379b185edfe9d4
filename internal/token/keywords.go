package token

var keywords = map[string]Kind{
	"type":      KwType,
	"fn":        KwFn,
	"let":       KwLet,
	"var":       KwVar,
	"drop":      KwDrop,
	"return":    KwReturn,
	"if":        KwIf,
	"else":      KwElse,
	"self":      KwSelf,
	"true":      KwTrue,
	"false":     KwFalse,
	"borrowing": KwBorrowing,
	"consuming": KwConsuming,
	"mutating":  KwMutating,
	"dependsOn": KwDependsOn,
	"scoped":    KwScoped,
	"resilient": KwResilient,
	"get":       KwGet,
	"dynamic":   KwDynamic,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые: "DependsOn" остаётся идентификатором.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
