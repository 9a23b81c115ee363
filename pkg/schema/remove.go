package schema

import (
	"fmt"

	"fabschema/pkg/contract"
)

// UnknownFormula: 列表中表示"化学式未知"的占位值。
const UnknownFormula = "-"

// RIE: 反应离子刻蚀。materials_etched 由 target_materials_formulas 派生。
type RIE struct {
	Header                  `yaml:",inline"`
	ProcessStep             `yaml:",inline"`
	ShortNames              []string             `yaml:"short_names,omitempty" json:"short_names,omitempty"`
	TargetMaterialsFormulas []string             `yaml:"target_materials_formulas,omitempty" json:"target_materials_formulas,omitempty"`
	ChamberPressure         *float64             `yaml:"chamber_pressure,omitempty" json:"chamber_pressure,omitempty"`
	ChamberTemperature      *float64             `yaml:"chamber_temperature,omitempty" json:"chamber_temperature,omitempty"`
	NumberOfLoops           *int                 `yaml:"number_of_loops,omitempty" json:"number_of_loops,omitempty"`
	Fluximeters             []MassflowController `yaml:"fluximeters,omitempty" json:"fluximeters,omitempty"`
	MaterialsEtched         []Chemical           `yaml:"materials_etched,omitempty" json:"materials_etched,omitempty"`
}

func (s *RIE) SectionName() string { return SectionRIE }

func (s *RIE) Chemicals() []contract.ChemicalRecord {
	out := appendChemicals(nil, s.MaterialsEtched)
	return appendFluximeters(out, s.Fluximeters)
}

// Derive 以 target_materials_formulas 整体重建 materials_etched；未给出列表时保持原值。
func (s *RIE) Derive() error {
	if s.TargetMaterialsFormulas == nil {
		return nil
	}
	chems, err := deriveChemicals("short_names", s.ShortNames, "target_materials_formulas", s.TargetMaterialsFormulas)
	if err != nil {
		return err
	}
	s.MaterialsEtched = chems
	return nil
}

// WetEtching: 湿法刻蚀。materials_etched 与 reactives_used_to_etch 均由列表字段派生。
type WetEtching struct {
	Header                   `yaml:",inline"`
	ProcessStep              `yaml:",inline"`
	FilteringSystem          *bool      `yaml:"filtering_system,omitempty" json:"filtering_system,omitempty"`
	RecycleSystem            *bool      `yaml:"recycle_system,omitempty" json:"recycle_system,omitempty"`
	ShortNames               []string   `yaml:"short_names,omitempty" json:"short_names,omitempty"`
	TargetMaterialsFormulas  []string   `yaml:"target_materials_formulas,omitempty" json:"target_materials_formulas,omitempty"`
	EtchingReactives         []string   `yaml:"etching_reactives,omitempty" json:"etching_reactives,omitempty"`
	EtchingReactivesFormulas []string   `yaml:"etching_reactives_formulas,omitempty" json:"etching_reactives_formulas,omitempty"`
	EtchingTemperature       *float64   `yaml:"etching_temperature,omitempty" json:"etching_temperature,omitempty"`
	Wetting                  *bool      `yaml:"wetting,omitempty" json:"wetting,omitempty"`
	WettingDuration          *float64   `yaml:"wetting_duration,omitempty" json:"wetting_duration,omitempty"`
	UltrasoundsRequired      *bool      `yaml:"ultrasounds_required,omitempty" json:"ultrasounds_required,omitempty"`
	UltrasoundsFrequency     *float64   `yaml:"ultrasounds_frequency,omitempty" json:"ultrasounds_frequency,omitempty"`
	UltrasoundsDuration      *float64   `yaml:"ultrasounds_duration,omitempty" json:"ultrasounds_duration,omitempty"`
	BathNumber               *int       `yaml:"bath_number,omitempty" json:"bath_number,omitempty"`
	DepthTarget              *float64   `yaml:"depth_target,omitempty" json:"depth_target,omitempty"`
	DurationTarget           *float64   `yaml:"duration_target,omitempty" json:"duration_target,omitempty"`
	EtchingRateTarget        *float64   `yaml:"etching_rate_target,omitempty" json:"etching_rate_target,omitempty"`
	MaterialsEtched          []Chemical `yaml:"materials_etched,omitempty" json:"materials_etched,omitempty"`
	ReactivesUsedToEtch      []Chemical `yaml:"reactives_used_to_etch,omitempty" json:"reactives_used_to_etch,omitempty"`
}

func (s *WetEtching) SectionName() string { return SectionWetEtching }

func (s *WetEtching) Chemicals() []contract.ChemicalRecord {
	out := appendChemicals(nil, s.MaterialsEtched)
	return appendChemicals(out, s.ReactivesUsedToEtch)
}

func (s *WetEtching) Derive() error {
	if s.TargetMaterialsFormulas != nil {
		chems, err := deriveChemicals("short_names", s.ShortNames, "target_materials_formulas", s.TargetMaterialsFormulas)
		if err != nil {
			return err
		}
		s.MaterialsEtched = chems
	}
	if s.EtchingReactivesFormulas != nil {
		chems, err := deriveChemicals("etching_reactives", s.EtchingReactives, "etching_reactives_formulas", s.EtchingReactivesFormulas)
		if err != nil {
			return err
		}
		s.ReactivesUsedToEtch = chems
	}
	return nil
}

// deriveChemicals 将 (名称, 化学式) 并列列表展开为子记录。
// 名称列表可省略；给出时长度必须与化学式列表一致。化学式为 "-" 时视为未知（留空）。
func deriveChemicals(namesField string, names []string, formulasField string, formulas []string) ([]Chemical, error) {
	if len(names) > 0 && len(names) != len(formulas) {
		return nil, fmt.Errorf("schema: %s has %d values, %s has %d: %w",
			namesField, len(names), formulasField, len(formulas), contract.ErrInvariantViolation)
	}
	out := make([]Chemical, len(formulas))
	for i, f := range formulas {
		if f == UnknownFormula {
			f = ""
		}
		out[i].Formula = f
		if len(names) > 0 {
			out[i].Name = names[i]
		}
	}
	return out, nil
}

// Stripping: 去胶/剥离。
type Stripping struct {
	Header                       `yaml:",inline"`
	ProcessStep                  `yaml:",inline"`
	StrippingType                string                          `yaml:"stripping_type,omitempty" json:"stripping_type,omitempty"`
	ShortName                    string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula              string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	RemovingTemperature          *float64                        `yaml:"removing_temperature,omitempty" json:"removing_temperature,omitempty"`
	DurationTarget               *float64                        `yaml:"duration_target,omitempty" json:"duration_target,omitempty"`
	UltrasoundRequired           *bool                           `yaml:"ultrasound_required,omitempty" json:"ultrasound_required,omitempty"`
	MaterialElementalComposition []contract.ElementalComposition `yaml:"material_elemental_composition,omitempty" json:"material_elemental_composition,omitempty"`
}

func (s *Stripping) SectionName() string { return SectionStripping }

func (s *Stripping) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.MaterialElementalComposition}}
}
