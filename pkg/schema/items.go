package schema

import (
	"time"

	"fabschema/pkg/contract"
)

// StartingMaterial: 起始晶圆/基片。
type StartingMaterial struct {
	Header               `yaml:",inline"`
	WaferMaterial        string                          `yaml:"wafer_material,omitempty" json:"wafer_material,omitempty"`
	ChemicalFormula      string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	ManufacturerName     string                          `yaml:"manufacturer_name,omitempty" json:"manufacturer_name,omitempty"`
	Datetime             *time.Time                      `yaml:"datetime,omitempty" json:"datetime,omitempty"`
	WaferDoping          string                          `yaml:"wafer_doping,omitempty" json:"wafer_doping,omitempty"`
	ElementalComposition []contract.ElementalComposition `yaml:"elemental_composition,omitempty" json:"elemental_composition,omitempty"`
}

func (s *StartingMaterial) SectionName() string { return SectionStartingMaterial }

func (s *StartingMaterial) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{s.record()}
}

func (s *StartingMaterial) record() contract.ChemicalRecord {
	return formulaRef{&s.ChemicalFormula, &s.ElementalComposition}
}

// ItemProperty: 加工件的数值属性。
type ItemProperty struct {
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Unit        string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	Value       *float64 `yaml:"value,omitempty" json:"value,omitempty"`
}

// Item: 加工件（晶圆、碎片、组件）。
type Item struct {
	Header        `yaml:",inline"`
	IDWaferParent string         `yaml:"id_wafer_parent,omitempty" json:"id_wafer_parent,omitempty"`
	Datetime      *time.Time     `yaml:"datetime,omitempty" json:"datetime,omitempty"`
	ShapeType     string         `yaml:"itemShapeType,omitempty" json:"itemShapeType,omitempty"`
	ID            string         `yaml:"id,omitempty" json:"id,omitempty"`
	IsAssembly    *bool          `yaml:"isAssembly,omitempty" json:"isAssembly,omitempty"`
	IDsComponents []string       `yaml:"ids_components,omitempty" json:"ids_components,omitempty"`
	Properties    []ItemProperty `yaml:"properties,omitempty" json:"properties,omitempty"`
}

func (s *Item) SectionName() string { return SectionItem }

func (s *Item) Chemicals() []contract.ChemicalRecord { return nil }

// SampleParenting: 起始材料 → 加工件 的谱系记录。
type SampleParenting struct {
	Header      `yaml:",inline"`
	Name        string             `yaml:"name,omitempty" json:"name,omitempty"`
	Datetime    *time.Time         `yaml:"datetime,omitempty" json:"datetime,omitempty"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs      []StartingMaterial `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs     []Item             `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

func (s *SampleParenting) SectionName() string { return SectionSampleParenting }

func (s *SampleParenting) Chemicals() []contract.ChemicalRecord {
	out := make([]contract.ChemicalRecord, 0, len(s.Inputs))
	for i := range s.Inputs {
		out = append(out, s.Inputs[i].record())
	}
	return out
}
