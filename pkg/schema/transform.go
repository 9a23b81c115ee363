package schema

import "fabschema/pkg/contract"

// Annealing: 退火。
type Annealing struct {
	Header                       `yaml:",inline"`
	ProcessStep                  `yaml:",inline"`
	ShortName                    string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula              string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	TemperatureStart             *float64                        `yaml:"temperature_start,omitempty" json:"temperature_start,omitempty"`
	TemperatureFinalTarget       *float64                        `yaml:"temperature_final_target,omitempty" json:"temperature_final_target,omitempty"`
	GasName                      string                          `yaml:"gas_name,omitempty" json:"gas_name,omitempty"`
	GasPercentage                *float64                        `yaml:"gas_percentage,omitempty" json:"gas_percentage,omitempty"`
	GasFlow                      *float64                        `yaml:"gas_flow,omitempty" json:"gas_flow,omitempty"`
	TemperatureFinalMeasured     *float64                        `yaml:"temperature_final_measured,omitempty" json:"temperature_final_measured,omitempty"`
	DurationMeasured             *float64                        `yaml:"duration_measured,omitempty" json:"duration_measured,omitempty"`
	TemperatureRampUpRate        *float64                        `yaml:"temperature_ramp_up_rate,omitempty" json:"temperature_ramp_up_rate,omitempty"`
	TemperatureRampDownRate      *float64                        `yaml:"temperature_ramp_down_rate,omitempty" json:"temperature_ramp_down_rate,omitempty"`
	MaterialElementalComposition []contract.ElementalComposition `yaml:"material_elemental_composition,omitempty" json:"material_elemental_composition,omitempty"`
}

func (s *Annealing) SectionName() string { return SectionAnnealing }

func (s *Annealing) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.MaterialElementalComposition}}
}

// LTODensification: 低温氧化层致密化；化学式为工艺气体。
type LTODensification struct {
	Header                   `yaml:",inline"`
	ProcessStep              `yaml:",inline"`
	DensificationType        string                          `yaml:"densification_type,omitempty" json:"densification_type,omitempty"`
	ShortName                string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula          string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	DensificationTemperature *float64                        `yaml:"densification_temperature,omitempty" json:"densification_temperature,omitempty"`
	GasFlow                  *float64                        `yaml:"gas_flow,omitempty" json:"gas_flow,omitempty"`
	DurationMeasured         *float64                        `yaml:"duration_measured,omitempty" json:"duration_measured,omitempty"`
	GasElementalComposition  []contract.ElementalComposition `yaml:"gas_elemental_composition,omitempty" json:"gas_elemental_composition,omitempty"`
}

func (s *LTODensification) SectionName() string { return SectionLTODensification }

func (s *LTODensification) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.GasElementalComposition}}
}

// ThermalOxidation: 热氧化；化学式为氧化气体。
type ThermalOxidation struct {
	Header                  `yaml:",inline"`
	ProcessStep             `yaml:",inline"`
	OxidationType           string                          `yaml:"oxidation_type,omitempty" json:"oxidation_type,omitempty"`
	ShortName               string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula         string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	ThermalOxidationGas     string                          `yaml:"thermal_oxidation_gas,omitempty" json:"thermal_oxidation_gas,omitempty"`
	TemperatureFinalTarget  *float64                        `yaml:"temperature_final_target,omitempty" json:"temperature_final_target,omitempty"`
	ThicknessTarget         *float64                        `yaml:"thickness_target,omitempty" json:"thickness_target,omitempty"`
	ThicknessMeasured       *float64                        `yaml:"thickness_measured,omitempty" json:"thickness_measured,omitempty"`
	DurationMeasured        *float64                        `yaml:"duration_measured,omitempty" json:"duration_measured,omitempty"`
	GasElementalComposition []contract.ElementalComposition `yaml:"gas_elemental_composition,omitempty" json:"gas_elemental_composition,omitempty"`
}

func (s *ThermalOxidation) SectionName() string { return SectionThermalOxidation }

func (s *ThermalOxidation) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.GasElementalComposition}}
}

// SOD: 旋涂掺杂源；化学式为掺杂材料。
type SOD struct {
	Header                             `yaml:",inline"`
	ProcessStep                        `yaml:",inline"`
	ShortName                          string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula                    string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	WaterRinseRequired                 string                          `yaml:"water_rinse_required,omitempty" json:"water_rinse_required,omitempty"`
	SpinDryerRequired                  string                          `yaml:"spin_dryer_required,omitempty" json:"spin_dryer_required,omitempty"`
	PEBDuration                        *float64                        `yaml:"peb_duration,omitempty" json:"peb_duration,omitempty"`
	PEBTemperature                     *float64                        `yaml:"peb_temperature,omitempty" json:"peb_temperature,omitempty"`
	SpinDispensedVolume                *float64                        `yaml:"spin_dispensed_volume,omitempty" json:"spin_dispensed_volume,omitempty"`
	SpinFrequency                      *float64                        `yaml:"spin_frequency,omitempty" json:"spin_frequency,omitempty"`
	DopingMaterialElementalComposition []contract.ElementalComposition `yaml:"doping_material_elemental_composition,omitempty" json:"doping_material_elemental_composition,omitempty"`
}

func (s *SOD) SectionName() string { return SectionSOD }

func (s *SOD) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.DopingMaterialElementalComposition}}
}
