// Package menu 定义检索界面的菜单（词条、直方图、周期表），并按 schema 目录校验。
package menu

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"fabschema/pkg/schema"
)

//go:embed menus.yaml
var menusYAML []byte

// 菜单项类型。
const (
	TypeTerms         = "terms"
	TypeHistogram     = "histogram"
	TypePeriodicTable = "periodic_table"
)

// Axis: 直方图横轴。
type Axis struct {
	Title string `yaml:"title" json:"title"`
	Unit  string `yaml:"unit" json:"unit"`
}

// Item: 单个菜单项；Quantity 为相对 data 的点分路径。
type Item struct {
	Title    string `yaml:"title" json:"title"`
	Type     string `yaml:"type" json:"type"`
	Quantity string `yaml:"quantity" json:"quantity"`
	NBins    int    `yaml:"n_bins,omitempty" json:"n_bins,omitempty"`
	Axis     *Axis  `yaml:"x,omitempty" json:"x,omitempty"`
}

// Menu: 绑定到一个 section 的菜单。
type Menu struct {
	Title   string `yaml:"title" json:"title"`
	Size    string `yaml:"size,omitempty" json:"size,omitempty"`
	Section string `yaml:"section" json:"section"`
	Items   []Item `yaml:"items" json:"items"`
}

// Load 严格解码菜单列表。
func Load(data []byte) ([]Menu, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var ms []Menu
	if err := dec.Decode(&ms); err != nil {
		return nil, fmt.Errorf("menu: %w", err)
	}
	return ms, nil
}

var defaultMenus = sync.OnceValue(func() []Menu {
	ms, err := Load(menusYAML)
	if err != nil {
		panic(err)
	}
	return ms
})

// All 返回内置菜单（副本）。
func All() []Menu { return append([]Menu(nil), defaultMenus()...) }

// For 返回绑定到 section 的内置菜单；section 可为短名或全限定名。
func For(section string) []Menu {
	name := section
	if d, err := schema.Lookup(section); err == nil {
		name = d.Name
	}
	var out []Menu
	for _, m := range defaultMenus() {
		if m.Section == name {
			out = append(out, m)
		}
	}
	return out
}

// SearchQuantity 拼出检索键：data.<path>#<全限定 section>。
func SearchQuantity(it Item, qualified string) string {
	return "data." + it.Quantity + "#" + qualified
}

// Validate 校验每个菜单项：section 已声明、路径解析到量、直方图为数值量且带单位与分箱数、
// 周期表指向 element 量。返回全部问题（errors.Join）。
func Validate(c *schema.Catalog, menus []Menu) error {
	var errs []error
	for _, m := range menus {
		if _, err := c.Lookup(m.Section); err != nil {
			errs = append(errs, fmt.Errorf("menu %q: %w", m.Title, err))
			continue
		}
		for _, it := range m.Items {
			if err := validateItem(c, m.Section, it); err != nil {
				errs = append(errs, fmt.Errorf("menu %q item %q: %w", m.Title, it.Title, err))
			}
		}
	}
	return errors.Join(errs...)
}

func validateItem(c *schema.Catalog, section string, it Item) error {
	q, err := c.Resolve(section, it.Quantity)
	if err != nil {
		return err
	}
	switch it.Type {
	case TypeTerms:
	case TypePeriodicTable:
		if q.Name != "element" {
			return fmt.Errorf("periodic table needs an element quantity, got %q", q.Name)
		}
	case TypeHistogram:
		if !q.Numeric() {
			return fmt.Errorf("histogram over non-numeric %q (%s)", q.Name, q.Type)
		}
		if it.NBins <= 0 {
			return fmt.Errorf("histogram needs n_bins > 0")
		}
		if it.Axis == nil || it.Axis.Unit == "" {
			return fmt.Errorf("histogram needs an axis unit")
		}
	default:
		return fmt.Errorf("invalid item type %q", it.Type)
	}
	return nil
}

// RenderedAxis/RenderedItem/Rendered: 带检索键的导出形式。
type RenderedAxis struct {
	SearchQuantity string `json:"search_quantity"`
	Title          string `json:"title"`
	Unit           string `json:"unit"`
}

type RenderedItem struct {
	Title          string        `json:"title"`
	Type           string        `json:"type"`
	SearchQuantity string        `json:"search_quantity,omitempty"`
	NBins          int           `json:"n_bins,omitempty"`
	X              *RenderedAxis `json:"x,omitempty"`
}

type Rendered struct {
	Title string         `json:"title"`
	Size  string         `json:"size,omitempty"`
	Items []RenderedItem `json:"items"`
}

// Render 将菜单展开为检索键形式；直方图的检索键挂在横轴上。
func Render(c *schema.Catalog, m Menu) (Rendered, error) {
	d, err := c.Lookup(m.Section)
	if err != nil {
		return Rendered{}, err
	}
	out := Rendered{Title: m.Title, Size: m.Size, Items: make([]RenderedItem, 0, len(m.Items))}
	for _, it := range m.Items {
		ri := RenderedItem{Title: it.Title, Type: it.Type}
		sq := SearchQuantity(it, d.Qualified)
		if it.Type == TypeHistogram && it.Axis != nil {
			ri.NBins = it.NBins
			ri.X = &RenderedAxis{SearchQuantity: sq, Title: it.Axis.Title, Unit: it.Axis.Unit}
		} else {
			ri.SearchQuantity = sq
		}
		out.Items = append(out.Items, ri)
	}
	return out, nil
}
