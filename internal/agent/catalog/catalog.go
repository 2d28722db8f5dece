package catalog

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// FieldType enumerates the argument types a capability field may declare.
type FieldType string

const (
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldEnum     FieldType = "enum"
	FieldText     FieldType = "text"
	FieldTextList FieldType = "list-of-text"
)

// Field declares one argument of a capability: its type, whether it is
// required, and the range/values constraints used for shape validation.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Min         *float64 // number only
	Max         *float64 // number only
	Values      []string // enum only, canonical casing
}

// Capability is one record type the backend is permitted to propose.
// ConfirmText is the default assistant phrase when the backend proposes this
// capability without any accompanying text.
type Capability struct {
	Name        string
	Description string
	ConfirmText string
	Fields      []Field
}

// Field returns the declared field with the given name.
func (c Capability) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Catalog is the fixed registry of capabilities, populated at startup.
// Adding a record type means registering a schema here; the interpreter and
// mediator need no changes.
type Catalog struct {
	names  []string
	byName map[string]Capability
}

// New builds a catalog from the given capabilities, rejecting duplicates.
func New(caps ...Capability) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Capability, len(caps))}
	for _, cap := range caps {
		if cap.Name == "" {
			return nil, fmt.Errorf("capability with empty name")
		}
		if _, dup := c.byName[cap.Name]; dup {
			return nil, fmt.Errorf("duplicate capability %q", cap.Name)
		}
		c.byName[cap.Name] = cap
		c.names = append(c.names, cap.Name)
	}
	return c, nil
}

// MustNew is New that panics on error, for fixed built-in sets.
func MustNew(caps ...Capability) *Catalog {
	c, err := New(caps...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks a capability up by name.
func (c *Catalog) Get(name string) (Capability, bool) {
	cap, ok := c.byName[name]
	return cap, ok
}

// Names returns capability names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// ToolInfos compiles the catalog into the tool declarations sent to the
// backend with every request.
func (c *Catalog) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(c.names))
	for _, name := range c.names {
		cap := c.byName[name]
		params := make(map[string]*schema.ParameterInfo, len(cap.Fields))
		for _, f := range cap.Fields {
			params[f.Name] = toParameterInfo(f)
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        cap.Name,
			Desc:        cap.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func toParameterInfo(f Field) *schema.ParameterInfo {
	p := &schema.ParameterInfo{
		Desc:     f.Description,
		Required: f.Required,
	}
	switch f.Type {
	case FieldDate:
		p.Type = schema.String
		p.Desc = f.Description + " (YYYY-MM-DD)"
	case FieldNumber:
		p.Type = schema.Number
		if f.Min != nil && f.Max != nil {
			p.Desc = fmt.Sprintf("%s (between %g and %g)", f.Description, *f.Min, *f.Max)
		}
	case FieldEnum:
		p.Type = schema.String
		p.Enum = f.Values
	case FieldTextList:
		p.Type = schema.Array
		p.ElemInfo = &schema.ParameterInfo{Type: schema.String}
	default:
		p.Type = schema.String
	}
	return p
}
