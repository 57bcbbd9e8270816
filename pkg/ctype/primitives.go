package ctype

// Primitives maps every sign/modifier/specifier combination C allows to
// its canonical Vesper Integer/Float name. Keyed by the modifier-normalised
// word sequence the grammar parser hands back: "long long" is folded to the
// single token "llong" before lookup.
var Primitives = map[string]Type{
	"char":                   &Integer{Name: "char"},
	"signed char":            &Integer{Name: "char"},
	"unsigned char":          &Integer{Name: "char"},
	"short":                  &Integer{Name: "short"},
	"short int":              &Integer{Name: "short"},
	"signed short":           &Integer{Name: "short"},
	"signed short int":       &Integer{Name: "short"},
	"unsigned short":         &Integer{Name: "ushort"},
	"unsigned short int":     &Integer{Name: "ushort"},
	"int":                    &Integer{Name: "int"},
	"signed":                 &Integer{Name: "int"},
	"signed int":             &Integer{Name: "int"},
	"unsigned":               &Integer{Name: "uint"},
	"unsigned int":           &Integer{Name: "uint"},
	"long":                   &Integer{Name: "long"},
	"long int":               &Integer{Name: "long"},
	"signed long":            &Integer{Name: "long"},
	"signed long int":        &Integer{Name: "long"},
	"unsigned long":          &Integer{Name: "ulong"},
	"unsigned long int":      &Integer{Name: "ulong"},
	"llong":                  &Integer{Name: "int64"},
	"llong int":              &Integer{Name: "int64"},
	"signed llong":           &Integer{Name: "int64"},
	"signed llong int":       &Integer{Name: "int64"},
	"unsigned llong":         &Integer{Name: "uint64"},
	"unsigned llong int":     &Integer{Name: "uint64"},
	"__int128":               &Integer{Name: "int128"},
	"signed __int128":        &Integer{Name: "int128"},
	"unsigned __int128":      &Integer{Name: "uint128"},
	"float":                  &Float{Name: "float"},
	"double":                 &Float{Name: "double"},
	"long double":            &Float{Name: "float80"},
	"_Bool":                  &Integer{Name: "uint8"},
}
