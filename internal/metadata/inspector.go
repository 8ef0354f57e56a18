package metadata

import (
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"healthops/internal/core/types"
)

var (
	dateType    = reflect.TypeOf(types.Date{})
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// auditFields are maintained by the server and never accepted from forms.
var auditFields = map[string]bool{
	"pubId":     true,
	"createdAt": true,
	"createdBy": true,
	"updatedAt": true,
	"updatedBy": true,
	"isActive":  true,
}

// referenceSuffix marks a column holding another entity's pubId.
const referenceSuffix = "PubId"

// Shape exposes the storage facts a form needs: the owner column and the
// columns checked for duplicates.
type Shape interface {
	OwnerColumn() string
	UniqueColumns() []string
}

// Describe inspects entity and completes the definition from shape.
// A nil shape or empty owner column marks the entity self-owned.
func Describe(entity any, name, path string, shape Shape) EntityDef {
	def := Inspect(entity, name)
	def.Path = path

	if shape == nil || shape.OwnerColumn() == "" {
		def.SelfOwned = true
		return def
	}

	def.OwnerField = shape.OwnerColumn()
	def.OwnerEntity = strings.TrimSuffix(def.OwnerField, referenceSuffix)
	for _, col := range shape.UniqueColumns() {
		if col == def.OwnerField {
			continue
		}
		def.UniqueFields = append(def.UniqueFields, col)
	}
	return def
}

// Inspect analyzes a struct and returns its EntityDef.
func Inspect(entity any, name string) EntityDef {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if name == "" {
		name = t.Name()
	}

	def := EntityDef{
		Name:   name,
		Label:  guessLabel(name),
		Fields: make([]FieldDef, 0, t.NumField()),
	}
	inspectStruct(t, &def)
	return def
}

func inspectStruct(t reflect.Type, def *EntityDef) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.PkgPath != "" { // unexported
			continue
		}

		// Embedded structs are flattened
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			inspectStruct(field.Type, def)
			continue
		}

		name := jsonName(field)
		if name == "-" {
			continue
		}

		fDef := FieldDef{
			Name:     name,
			Label:    guessLabel(strings.TrimSuffix(name, referenceSuffix)),
			ReadOnly: auditFields[name] || field.Tag.Get("meta") == "readonly",
		}
		applyValidateTag(&fDef, field.Tag.Get("validate"))
		mapFieldType(&fDef, field)

		def.Fields = append(def.Fields, fDef)
	}
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		def.Nullable = true
		t = t.Elem()
	}

	if strings.HasSuffix(def.Name, referenceSuffix) && t.Kind() == reflect.String {
		def.Type = TypeReference
		def.ReferenceType = strings.TrimSuffix(def.Name, referenceSuffix)
		def.Options = nil
		return
	}

	switch t {
	case dateType:
		def.Type = TypeDate
		return
	case timeType:
		def.Type = TypeDateTime
		return
	case decimalType:
		def.Type = TypeNumber
		def.Scale = 4
		// Money by name convention
		if isMoneyName(field.Name) {
			def.Type = TypeMoney
			def.Scale = 2
		}
		return
	}

	switch t.Kind() {
	case reflect.String:
		def.Type = TypeString
		if len(def.Options) > 0 {
			def.Type = TypeEnum
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
		def.Scale = 2
	case reflect.Bool:
		def.Type = TypeBoolean
	default:
		def.Type = TypeString // fallback
	}
}

// applyValidateTag reads required, max and oneof from a validator tag.
func applyValidateTag(def *FieldDef, tag string) {
	if tag == "" {
		return
	}
	for _, rule := range strings.Split(tag, ",") {
		key, param, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			def.Required = true
		case "max":
			if n, err := strconv.Atoi(param); err == nil {
				def.MaxLength = n
			}
		case "oneof":
			def.Options = strings.Fields(param)
		}
	}
}

func isMoneyName(name string) bool {
	for _, s := range []string{"Amount", "Price", "Benchmark", "Pmpm"} {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	// Fallback: camelCase
	runes := []rune(field.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

var acronyms = map[string]string{
	"id":    "ID",
	"npi":   "NPI",
	"tin":   "TIN",
	"pcp":   "PCP",
	"pmpm":  "PMPM",
	"vbpay": "VBPay",
}

// guessLabel turns a camelCase name into a sentence-case label:
// "pmpmBenchmark" becomes "PMPM benchmark".
func guessLabel(name string) string {
	words := splitCamel(name)
	for i, w := range words {
		lower := strings.ToLower(w)
		if a, ok := acronyms[lower]; ok {
			words[i] = a
			continue
		}
		if i == 0 {
			r := []rune(lower)
			r[0] = unicode.ToUpper(r[0])
			words[i] = string(r)
			continue
		}
		words[i] = lower
	}
	return strings.Join(words, " ")
}

func splitCamel(s string) []string {
	var words []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}
