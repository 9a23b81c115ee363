package schema

import "fabschema/pkg/contract"

// Equipment: 加工设备；气路的化学式同样参与组成归一化。
type Equipment struct {
	Header           `yaml:",inline"`
	Name             string               `yaml:"name,omitempty" json:"name,omitempty"`
	InventoryCode    string               `yaml:"inventory_code,omitempty" json:"inventory_code,omitempty"`
	ManufacturerName string               `yaml:"manufacturer_name,omitempty" json:"manufacturer_name,omitempty"`
	Model            string               `yaml:"model,omitempty" json:"model,omitempty"`
	Affiliation      string               `yaml:"affiliation,omitempty" json:"affiliation,omitempty"`
	Location         string               `yaml:"location,omitempty" json:"location,omitempty"`
	Description      string               `yaml:"description,omitempty" json:"description,omitempty"`
	Notes            string               `yaml:"notes,omitempty" json:"notes,omitempty"`
	Fluximeters      []MassflowController `yaml:"fluximeters,omitempty" json:"fluximeters,omitempty"`
}

func (s *Equipment) SectionName() string { return SectionEquipment }

func (s *Equipment) Chemicals() []contract.ChemicalRecord {
	return appendFluximeters(nil, s.Fluximeters)
}
