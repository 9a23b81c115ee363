package schema

import (
	"time"

	"fabschema/pkg/contract"
)

// Chemical: 具名化学品（被刻蚀材料、刻蚀试剂等子记录）。
type Chemical struct {
	Name                 string                          `yaml:"name,omitempty" json:"name,omitempty"`
	Formula              string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	ElementalComposition []contract.ElementalComposition `yaml:"elemental_composition,omitempty" json:"elemental_composition,omitempty"`
}

func (c *Chemical) ChemicalFormula() string { return c.Formula }

func (c *Chemical) SetElementalComposition(list []contract.ElementalComposition) {
	c.ElementalComposition = list
}

// MassflowController: 工艺气路（流量计）；化学式为所通气体。
type MassflowController struct {
	Name                 string                          `yaml:"name,omitempty" json:"name,omitempty"`
	Formula              string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	Massflow             *float64                        `yaml:"massflow,omitempty" json:"massflow,omitempty"`
	MinMassflow          *float64                        `yaml:"min_massflow,omitempty" json:"min_massflow,omitempty"`
	MaxMassflow          *float64                        `yaml:"max_massflow,omitempty" json:"max_massflow,omitempty"`
	ElementalComposition []contract.ElementalComposition `yaml:"elemental_composition,omitempty" json:"elemental_composition,omitempty"`
}

func (m *MassflowController) ChemicalFormula() string { return m.Formula }

func (m *MassflowController) SetElementalComposition(list []contract.ElementalComposition) {
	m.ElementalComposition = list
}

// ProcessStep: 工艺步骤公共字段（嵌入各步骤类型）。
type ProcessStep struct {
	Name            string     `yaml:"name,omitempty" json:"name,omitempty"`
	Description     string     `yaml:"description,omitempty" json:"description,omitempty"`
	JobNumber       *int       `yaml:"job_number,omitempty" json:"job_number,omitempty"`
	Tag             string     `yaml:"tag,omitempty" json:"tag,omitempty"`
	Location        string     `yaml:"location,omitempty" json:"location,omitempty"`
	Operator        string     `yaml:"operator,omitempty" json:"operator,omitempty"`
	Room            string     `yaml:"room,omitempty" json:"room,omitempty"`
	IDItemProcessed string     `yaml:"id_item_processed,omitempty" json:"id_item_processed,omitempty"`
	StartingDate    *time.Time `yaml:"starting_date,omitempty" json:"starting_date,omitempty"`
	EndingDate      *time.Time `yaml:"ending_date,omitempty" json:"ending_date,omitempty"`
	Duration        *float64   `yaml:"duration,omitempty" json:"duration,omitempty"`
	RecipeName      string     `yaml:"recipe_name,omitempty" json:"recipe_name,omitempty"`
	Notes           string     `yaml:"notes,omitempty" json:"notes,omitempty"`
}
