// Package metadata describes the audited entities to form-generating clients.
package metadata

import "strings"

// FieldType defines the data type of a field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeInteger   FieldType = "integer"
	TypeNumber    FieldType = "number" // decimal
	TypeMoney     FieldType = "money"
	TypeBoolean   FieldType = "boolean"
	TypeDate      FieldType = "date"     // calendar day, YYYY-MM-DD
	TypeDateTime  FieldType = "datetime" // UTC instant
	TypeReference FieldType = "reference"
	TypeEnum      FieldType = "enum"
)

// EntityDef describes an audited entity.
type EntityDef struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	// Path is the URL segment under /api/v1.
	Path string `json:"path"`

	// OwnerField is the json name of the owner column; empty when self-owned.
	OwnerField  string `json:"ownerField,omitempty"`
	OwnerEntity string `json:"ownerEntity,omitempty"`
	SelfOwned   bool   `json:"selfOwned,omitempty"`

	// UniqueFields must not repeat among the owner's active records.
	UniqueFields []string `json:"uniqueFields,omitempty"`

	Fields []FieldDef `json:"fields"`
}

// Field returns the field named name.
func (d EntityDef) Field(name string) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// FieldDef describes a field.
type FieldDef struct {
	Name          string    `json:"name"`
	Label         string    `json:"label,omitempty"`
	Type          FieldType `json:"type"`
	ReferenceType string    `json:"referenceType,omitempty"` // e.g. "payer"
	Required      bool      `json:"required,omitempty"`
	ReadOnly      bool      `json:"readOnly,omitempty"`
	Nullable      bool      `json:"nullable,omitempty"`
	MaxLength     int       `json:"maxLength,omitempty"`
	Scale         int       `json:"scale,omitempty"` // for numbers
	Options       []string  `json:"options,omitempty"`
}

// Registry stores entity definitions in registration order.
type Registry struct {
	order    []string
	entities map[string]EntityDef
	byPath   map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]EntityDef),
		byPath:   make(map[string]string),
	}
}

// Register adds def, replacing an earlier definition of the same name.
func (r *Registry) Register(def EntityDef) {
	if _, ok := r.entities[def.Name]; !ok {
		r.order = append(r.order, def.Name)
	}
	r.entities[def.Name] = def
	if def.Path != "" {
		r.byPath[def.Path] = def.Name
	}
}

func (r *Registry) Get(name string) (EntityDef, bool) {
	d, ok := r.entities[name]
	if !ok {
		if n, byPath := r.byPath[strings.Trim(name, "/")]; byPath {
			d, ok = r.entities[n]
		}
	}
	return d, ok
}

func (r *Registry) List() []EntityDef {
	list := make([]EntityDef, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.entities[name])
	}
	return list
}
