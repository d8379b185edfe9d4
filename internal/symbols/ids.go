package symbols

// TypeID identifies a declared or built-in type inside a Table.
type TypeID uint32

// FuncID identifies a function or method inside a Table.
type FuncID uint32

const (
	NoTypeID TypeID = 0
	NoFuncID FuncID = 0
)

// встроенные типы занимают первые слоты
const (
	TypeInt  TypeID = 1
	TypeBool TypeID = 2
)

func (id TypeID) IsValid() bool { return id != NoTypeID }
func (id FuncID) IsValid() bool { return id != NoFuncID }
