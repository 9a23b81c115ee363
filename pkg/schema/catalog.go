package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"fabschema/pkg/contract"
)

//go:embed packages.yaml
var packagesYAML []byte

// ErrUnknownQuantity: 路径无法解析为已声明的量。
var ErrUnknownQuantity = errors.New("unknown quantity")

// Quantity: section 中一个可编辑/可检索的量。
type Quantity struct {
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type" json:"type"`
	Shape       string   `yaml:"shape,omitempty" json:"shape,omitempty"`
	Unit        string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	DisplayUnit string   `yaml:"display_unit,omitempty" json:"display_unit,omitempty"`
	Component   string   `yaml:"component,omitempty" json:"component,omitempty"`
	Label       string   `yaml:"label,omitempty" json:"label,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Enum        []string `yaml:"enum,omitempty" json:"enum,omitempty"`
}

// Numeric 报告该量能否用于直方图。
func (q Quantity) Numeric() bool { return q.Type == "float" || q.Type == "int" }

// SubSection: 嵌套 section（Section 为 shared 或根 section 名）。
type SubSection struct {
	Name    string `yaml:"name" json:"name"`
	Section string `yaml:"section" json:"section"`
	Repeats bool   `yaml:"repeats,omitempty" json:"repeats,omitempty"`
}

// ELN: 编辑界面的隐藏与排序。
type ELN struct {
	Hide  []string `yaml:"hide,omitempty" json:"hide,omitempty"`
	Order []string `yaml:"order,omitempty" json:"order,omitempty"`
}

// SectionDef: 一个 section 的声明。
type SectionDef struct {
	Name        string       `yaml:"name" json:"name"`
	Extends     string       `yaml:"extends,omitempty" json:"extends,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	ELN         ELN          `yaml:"eln,omitempty" json:"eln,omitempty"`
	Quantities  []Quantity   `yaml:"quantities,omitempty" json:"quantities,omitempty"`
	SubSections []SubSection `yaml:"sub_sections,omitempty" json:"sub_sections,omitempty"`

	// 以下由 Load 填写
	Package   string `yaml:"-" json:"package,omitempty"`
	Qualified string `yaml:"-" json:"qualified,omitempty"`
}

// Package: 一个 schema 入口包。
type Package struct {
	Name        string        `yaml:"name" json:"name"`
	Module      string        `yaml:"module" json:"module"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Sections    []*SectionDef `yaml:"sections" json:"sections"`
}

// Catalog: 只读 section 目录；Load 之后不再修改，可并发读取。
type Catalog struct {
	Shared   []*SectionDef `yaml:"shared" json:"shared"`
	Packages []*Package    `yaml:"packages" json:"packages"`

	index map[string]*SectionDef
}

var defaultComponent = map[string]string{
	"str":      "StringEditQuantity",
	"float":    "NumberEditQuantity",
	"int":      "NumberEditQuantity",
	"bool":     "BoolEditQuantity",
	"datetime": "DateTimeEditQuantity",
	"enum":     "EnumEditQuantity",
}

// Load 严格解码目录（拒绝未知字段）并校验引用完整性。
func Load(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("schema catalog: %w", err)
	}
	c.index = make(map[string]*SectionDef)
	add := func(d *SectionDef) error {
		if d.Name == "" {
			return fmt.Errorf("schema catalog: section without name")
		}
		if _, dup := c.index[d.Name]; dup {
			return fmt.Errorf("schema catalog: duplicate section %q", d.Name)
		}
		c.index[d.Name] = d
		if d.Qualified != "" {
			c.index[d.Qualified] = d
		}
		return nil
	}
	for _, d := range c.Shared {
		if err := add(d); err != nil {
			return nil, err
		}
	}
	for _, p := range c.Packages {
		if p.Name == "" || p.Module == "" {
			return nil, fmt.Errorf("schema catalog: package needs name and module")
		}
		for _, d := range p.Sections {
			d.Package = p.Name
			d.Qualified = p.Module + "." + d.Name
			if err := add(d); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range c.all() {
		if err := c.check(d); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (c *Catalog) all() []*SectionDef {
	out := append([]*SectionDef(nil), c.Shared...)
	for _, p := range c.Packages {
		out = append(out, p.Sections...)
	}
	return out
}

func (c *Catalog) check(d *SectionDef) error {
	if d.Extends != "" {
		base, ok := c.index[d.Extends]
		if !ok {
			return fmt.Errorf("schema catalog: %s extends unknown %q", d.Name, d.Extends)
		}
		// 只允许单层继承
		if base.Extends != "" || base == d {
			return fmt.Errorf("schema catalog: %s: nested or cyclic extends %q", d.Name, d.Extends)
		}
	}
	for i := range d.Quantities {
		q := &d.Quantities[i]
		comp, ok := defaultComponent[q.Type]
		if !ok {
			return fmt.Errorf("schema catalog: %s.%s: invalid type %q", d.Name, q.Name, q.Type)
		}
		if q.Component == "" {
			q.Component = comp
		}
		if (q.Type == "enum") != (len(q.Enum) > 0) {
			return fmt.Errorf("schema catalog: %s.%s: enum values must be given exactly for enum type", d.Name, q.Name)
		}
		if q.Unit != "" && !q.Numeric() {
			return fmt.Errorf("schema catalog: %s.%s: unit on non-numeric quantity", d.Name, q.Name)
		}
		if q.DisplayUnit == "" {
			q.DisplayUnit = q.Unit
		}
		if q.Shape != "" && q.Shape != "*" {
			return fmt.Errorf("schema catalog: %s.%s: invalid shape %q", d.Name, q.Name, q.Shape)
		}
	}
	for _, s := range d.SubSections {
		if _, ok := c.index[s.Section]; !ok {
			return fmt.Errorf("schema catalog: %s.%s: unknown section %q", d.Name, s.Name, s.Section)
		}
	}
	seen := make(map[string]bool)
	for _, n := range c.members(d) {
		if seen[n] {
			return fmt.Errorf("schema catalog: %s: duplicate member %q", d.Name, n)
		}
		seen[n] = true
	}
	for _, n := range d.ELN.Order {
		if !seen[n] {
			return fmt.Errorf("schema catalog: %s: eln order names undeclared %q", d.Name, n)
		}
	}
	return nil
}

// members 返回继承与自身的全部量名与子 section 名。
func (c *Catalog) members(d *SectionDef) []string {
	var out []string
	for _, q := range c.quantities(d) {
		out = append(out, q.Name)
	}
	for _, s := range c.subSections(d) {
		out = append(out, s.Name)
	}
	return out
}

func (c *Catalog) quantities(d *SectionDef) []Quantity {
	var out []Quantity
	if base, ok := c.index[d.Extends]; ok && d.Extends != "" {
		out = append(out, c.quantities(base)...)
	}
	return append(out, d.Quantities...)
}

func (c *Catalog) subSections(d *SectionDef) []SubSection {
	var out []SubSection
	if base, ok := c.index[d.Extends]; ok && d.Extends != "" {
		out = append(out, c.subSections(base)...)
	}
	return append(out, d.SubSections...)
}

// Lookup 按短名或全限定名查找 section。
func (c *Catalog) Lookup(name string) (*SectionDef, error) {
	d, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("schema: %q: %w", name, contract.ErrUnknownSection)
	}
	return d, nil
}

// Quantities 返回 section 的全部量（继承的在前）。
func (c *Catalog) Quantities(name string) ([]Quantity, error) {
	d, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return c.quantities(d), nil
}

// SubSections 返回 section 的全部子 section（继承的在前）。
func (c *Catalog) SubSections(name string) ([]SubSection, error) {
	d, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return c.subSections(d), nil
}

// Resolve 沿点分路径（如 "fluximeters.elemental_composition.element"）解析到一个量。
func (c *Catalog) Resolve(section, path string) (Quantity, error) {
	d, err := c.Lookup(section)
	if err != nil {
		return Quantity{}, err
	}
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		if i == len(segs)-1 {
			for _, q := range c.quantities(d) {
				if q.Name == seg {
					return q, nil
				}
			}
			break
		}
		next := ""
		for _, s := range c.subSections(d) {
			if s.Name == seg {
				next = s.Section
				break
			}
		}
		if next == "" {
			break
		}
		d = c.index[next]
	}
	return Quantity{}, fmt.Errorf("schema: %s: %q: %w", section, path, ErrUnknownQuantity)
}

// Sections 返回全部根 section（按包声明顺序）。
func (c *Catalog) Sections() []*SectionDef {
	var out []*SectionDef
	for _, p := range c.Packages {
		out = append(out, p.Sections...)
	}
	return out
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(packagesYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Default 返回内置目录（packages.yaml）。
func Default() *Catalog { return defaultCatalog() }

// Packages 返回内置目录的入口包。
func Packages() []*Package { return Default().Packages }

// Lookup 在内置目录中查找 section。
func Lookup(name string) (*SectionDef, error) { return Default().Lookup(name) }

// Quantities 返回内置目录中 section 的全部量。
func Quantities(name string) ([]Quantity, error) { return Default().Quantities(name) }
