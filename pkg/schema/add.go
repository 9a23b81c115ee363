package schema

import "fabschema/pkg/contract"

// ICPCVD: 感应耦合等离子体化学气相沉积。
type ICPCVD struct {
	Header                       `yaml:",inline"`
	ProcessStep                  `yaml:",inline"`
	ShortName                    string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula              string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	ThicknessFromRecipe          *float64                        `yaml:"thickness_from_recipe,omitempty" json:"thickness_from_recipe,omitempty"`
	DurationFromRecipe           *float64                        `yaml:"duration_from_recipe,omitempty" json:"duration_from_recipe,omitempty"`
	DepositionRateFromRecipe     *float64                        `yaml:"deposition_rate_from_recipe,omitempty" json:"deposition_rate_from_recipe,omitempty"`
	ThicknessTarget              *float64                        `yaml:"thickness_target,omitempty" json:"thickness_target,omitempty"`
	ChamberPressure              *float64                        `yaml:"chamber_pressure,omitempty" json:"chamber_pressure,omitempty"`
	ChuckTemperature             *float64                        `yaml:"chuck_temperature,omitempty" json:"chuck_temperature,omitempty"`
	Power                        *float64                        `yaml:"power,omitempty" json:"power,omitempty"`
	Bias                         *float64                        `yaml:"bias,omitempty" json:"bias,omitempty"`
	ThicknessMeasured            *float64                        `yaml:"thickness_measured,omitempty" json:"thickness_measured,omitempty"`
	DurationMeasured             *float64                        `yaml:"duration_measured,omitempty" json:"duration_measured,omitempty"`
	DepositionRateObtained       *float64                        `yaml:"deposition_rate_obtained,omitempty" json:"deposition_rate_obtained,omitempty"`
	Fluximeters                  []MassflowController            `yaml:"fluximeters,omitempty" json:"fluximeters,omitempty"`
	MaterialElementalComposition []contract.ElementalComposition `yaml:"material_elemental_composition,omitempty" json:"material_elemental_composition,omitempty"`
}

func (s *ICPCVD) SectionName() string { return SectionICPCVD }

func (s *ICPCVD) Chemicals() []contract.ChemicalRecord {
	out := []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.MaterialElementalComposition}}
	return appendFluximeters(out, s.Fluximeters)
}

// SpinCoating: 旋涂光刻胶。
type SpinCoating struct {
	Header                     `yaml:",inline"`
	ProcessStep                `yaml:",inline"`
	ShortName                  string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula            string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	ThicknessFromRecipe        *float64                        `yaml:"thickness_from_recipe,omitempty" json:"thickness_from_recipe,omitempty"`
	DurationFromRecipe         *float64                        `yaml:"duration_from_recipe,omitempty" json:"duration_from_recipe,omitempty"`
	ThicknessTarget            *float64                        `yaml:"thickness_target,omitempty" json:"thickness_target,omitempty"`
	HDMSRequired               *bool                           `yaml:"hdms_required,omitempty" json:"hdms_required,omitempty"`
	ExposureRequired           *bool                           `yaml:"exposure_required,omitempty" json:"exposure_required,omitempty"`
	ExposureDuration           *float64                        `yaml:"exposure_duration,omitempty" json:"exposure_duration,omitempty"`
	PEBRequired                *bool                           `yaml:"peb_required,omitempty" json:"peb_required,omitempty"`
	PEBDuration                *float64                        `yaml:"peb_duration,omitempty" json:"peb_duration,omitempty"`
	PEBTemperature             *float64                        `yaml:"peb_temperature,omitempty" json:"peb_temperature,omitempty"`
	DewettingDuration          *float64                        `yaml:"dewetting_duration,omitempty" json:"dewetting_duration,omitempty"`
	DewettingTemperature       *float64                        `yaml:"dewetting_temperature,omitempty" json:"dewetting_temperature,omitempty"`
	SpinDispensedVolume        *float64                        `yaml:"spin_dispensed_volume,omitempty" json:"spin_dispensed_volume,omitempty"`
	SpinFrequency              *float64                        `yaml:"spin_frequency,omitempty" json:"spin_frequency,omitempty"`
	SpinAngularAcceleration    *float64                        `yaml:"spin_angular_acceleration,omitempty" json:"spin_angular_acceleration,omitempty"`
	SpinDuration               *float64                        `yaml:"spin_duration,omitempty" json:"spin_duration,omitempty"`
	BakingDuration             *float64                        `yaml:"baking_duration,omitempty" json:"baking_duration,omitempty"`
	BakingTemperature          *float64                        `yaml:"baking_temperature,omitempty" json:"baking_temperature,omitempty"`
	ThicknessMeasured          *float64                        `yaml:"thickness_measured,omitempty" json:"thickness_measured,omitempty"`
	ResistElementalComposition []contract.ElementalComposition `yaml:"resist_elemental_composition,omitempty" json:"resist_elemental_composition,omitempty"`
}

func (s *SpinCoating) SectionName() string { return SectionSpinCoating }

func (s *SpinCoating) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.ResistElementalComposition}}
}

// Sputtering: 溅射沉积。
type Sputtering struct {
	Header                       `yaml:",inline"`
	ProcessStep                  `yaml:",inline"`
	ShortName                    string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula              string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	ThicknessTarget              *float64                        `yaml:"thickness_target,omitempty" json:"thickness_target,omitempty"`
	DurationTarget               *float64                        `yaml:"duration_target,omitempty" json:"duration_target,omitempty"`
	ChuckTemperature             *float64                        `yaml:"chuck_temperature,omitempty" json:"chuck_temperature,omitempty"`
	Power                        *float64                        `yaml:"power,omitempty" json:"power,omitempty"`
	DelayBetweenStackLayers      *float64                        `yaml:"delay_between_stack_layers,omitempty" json:"delay_between_stack_layers,omitempty"`
	ThicknessMeasured            *float64                        `yaml:"thickness_measured,omitempty" json:"thickness_measured,omitempty"`
	DurationMeasured             *float64                        `yaml:"duration_measured,omitempty" json:"duration_measured,omitempty"`
	DepositionRateObtained       *float64                        `yaml:"deposition_rate_obtained,omitempty" json:"deposition_rate_obtained,omitempty"`
	MaterialElementalComposition []contract.ElementalComposition `yaml:"material_elemental_composition,omitempty" json:"material_elemental_composition,omitempty"`
}

func (s *Sputtering) SectionName() string { return SectionSputtering }

func (s *Sputtering) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.MaterialElementalComposition}}
}

// SOG: 旋涂玻璃。
type SOG struct {
	Header                        `yaml:",inline"`
	ProcessStep                   `yaml:",inline"`
	ShortName                     string                          `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	ChemicalFormula               string                          `yaml:"chemical_formula,omitempty" json:"chemical_formula,omitempty"`
	PreCleaning                   string                          `yaml:"pre_cleaning,omitempty" json:"pre_cleaning,omitempty"`
	ThicknessTarget               *float64                        `yaml:"thickness_target,omitempty" json:"thickness_target,omitempty"`
	DewettingDuration             *float64                        `yaml:"dewetting_duration,omitempty" json:"dewetting_duration,omitempty"`
	DewettingTemperature          *float64                        `yaml:"dewetting_temperature,omitempty" json:"dewetting_temperature,omitempty"`
	ThicknessMeasured             *float64                        `yaml:"thickness_measured,omitempty" json:"thickness_measured,omitempty"`
	SubstrateElementalComposition []contract.ElementalComposition `yaml:"substrate_elemental_composition,omitempty" json:"substrate_elemental_composition,omitempty"`
}

func (s *SOG) SectionName() string { return SectionSOG }

func (s *SOG) Chemicals() []contract.ChemicalRecord {
	return []contract.ChemicalRecord{formulaRef{&s.ChemicalFormula, &s.SubstrateElementalComposition}}
}
