// Package types defines the value types of the language and the
// compatibility rules shared by every check in the analyzer.
package types

// MiniType is one of the language's value types, or one of the two
// sentinels Unknown and Error.
type MiniType int

const (
	Int MiniType = iota
	Float
	Double
	String
	Bool
	Void

	// Unknown marks a type that could not be resolved. An earlier check has
	// already reported why, so Unknown never causes a second diagnostic.
	Unknown
	// Error marks the result of a construct that failed a check.
	Error
)

var names = map[MiniType]string{
	Int:     "int",
	Float:   "float",
	Double:  "double",
	String:  "string",
	Bool:    "bool",
	Void:    "void",
	Unknown: "unknown",
	Error:   "error",
}

// keywords maps type keywords to their MiniType.
var keywords = map[string]MiniType{
	"int":    Int,
	"float":  Float,
	"double": Double,
	"string": String,
	"bool":   Bool,
	"void":   Void,
}

func (t MiniType) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return "unknown"
}

// Parse maps a type keyword to its MiniType. Anything that is not a type
// keyword maps to Unknown.
func Parse(token string) MiniType {
	if t, ok := keywords[token]; ok {
		return t
	}
	return Unknown
}

// IsSentinel reports whether t is Unknown or Error.
func IsSentinel(t MiniType) bool {
	return t == Unknown || t == Error
}

// IsNumeric reports whether t is Int, Float or Double.
func IsNumeric(t MiniType) bool {
	return t == Int || t == Float || t == Double
}

// AreCompatible reports whether a value of type source can be stored where
// target is expected. Widening goes Int → Float → Double and never the other
// way. Sentinels are compatible with everything.
func AreCompatible(target, source MiniType) bool {
	if IsSentinel(target) || IsSentinel(source) {
		return true
	}
	if target == source {
		return true
	}
	switch target {
	case Double:
		return source == Float || source == Int
	case Float:
		return source == Int
	}
	return false
}

// CommonType is the result type of an arithmetic operation on a and b.
// String absorbs everything else; numeric operands widen to the widest of
// the two; any other mix yields Int.
func CommonType(a, b MiniType) MiniType {
	switch {
	case IsSentinel(a) || IsSentinel(b):
		return Unknown
	case a == String || b == String:
		return String
	case a == Double || b == Double:
		return Double
	case a == Float || b == Float:
		return Float
	}
	return Int
}
