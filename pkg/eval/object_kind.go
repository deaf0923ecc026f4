// pkg/eval/object_kind.go
package eval

// ObjectKind represents the type of an object using an enum for faster comparisons.
type ObjectKind uint8

const (
	KindInvalid ObjectKind = iota
	KindNil
	KindBoolean
	KindNumber
	KindString
	KindFunction
	KindBuiltin
	KindClass
	KindInstance
)

func (k ObjectKind) String() string {
	switch k {
	case KindNil:
		return "NIL"
	case KindBoolean:
		return "BOOLEAN"
	case KindNumber:
		return "NUMBER"
	case KindString:
		return "STRING"
	case KindFunction:
		return "FUNCTION"
	case KindBuiltin:
		return "BUILTIN"
	case KindClass:
		return "CLASS"
	case KindInstance:
		return "INSTANCE"
	default:
		return "INVALID"
	}
}

// Shared singletons. Nil and the two booleans are never allocated again.
var (
	NIL   *Nil
	TRUE  *Boolean
	FALSE *Boolean
)

func init() {
	NIL = &Nil{}
	TRUE = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// FromLiteral converts a parser literal (nil, bool, float64 or string) into
// a runtime value.
func FromLiteral(v any) Object {
	switch v := v.(type) {
	case bool:
		return nativeBoolToBooleanObject(v)
	case float64:
		return &Number{Value: v}
	case string:
		return &String{Value: v}
	default:
		return NIL
	}
}
