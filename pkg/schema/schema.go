// Package schema 定义微纳加工记录（物料、工艺步骤、设备）的 section 类型。
//
// 每个根 section 实现 contract.Section；携带化学式的记录经 Chemicals() 暴露为
// contract.ChemicalRecord，由统一的组成归一化逻辑处理。section 的展示与检索
// 元数据（量纲、单位、ELN 排序）是声明式配置，见 packages.yaml 与 Catalog。
package schema

import (
	"fmt"
	"sort"

	"fabschema/pkg/contract"
)

// section 名（与 data.m_def 一致）。
const (
	SectionStartingMaterial = "StartingMaterial"
	SectionItem             = "Item"
	SectionSampleParenting  = "SampleParenting"
	SectionICPCVD           = "ICP_CVD"
	SectionSpinCoating      = "Spin_Coating"
	SectionSputtering       = "Sputtering"
	SectionSOG              = "SOG"
	SectionAnnealing        = "Annealing"
	SectionLTODensification = "LTODensification"
	SectionThermalOxidation = "ThermalOxidation"
	SectionSOD              = "SOD"
	SectionRIE              = "RIE"
	SectionWetEtching       = "WetEtching"
	SectionStripping        = "Stripping"
	SectionEquipment        = "Equipment"
)

// Header: 根记录公共头。子记录不写 m_def。
type Header struct {
	MDef string `yaml:"m_def,omitempty" json:"m_def,omitempty"`
}

// Def 返回记录中写明的 m_def（可能为短名或全限定名）。
func (h *Header) Def() string { return h.MDef }

var constructors = map[string]func() contract.Section{
	SectionStartingMaterial: func() contract.Section { return &StartingMaterial{Header: Header{MDef: SectionStartingMaterial}} },
	SectionItem:             func() contract.Section { return &Item{Header: Header{MDef: SectionItem}} },
	SectionSampleParenting:  func() contract.Section { return &SampleParenting{Header: Header{MDef: SectionSampleParenting}} },
	SectionICPCVD:           func() contract.Section { return &ICPCVD{Header: Header{MDef: SectionICPCVD}} },
	SectionSpinCoating:      func() contract.Section { return &SpinCoating{Header: Header{MDef: SectionSpinCoating}} },
	SectionSputtering:       func() contract.Section { return &Sputtering{Header: Header{MDef: SectionSputtering}} },
	SectionSOG:              func() contract.Section { return &SOG{Header: Header{MDef: SectionSOG}} },
	SectionAnnealing:        func() contract.Section { return &Annealing{Header: Header{MDef: SectionAnnealing}} },
	SectionLTODensification: func() contract.Section { return &LTODensification{Header: Header{MDef: SectionLTODensification}} },
	SectionThermalOxidation: func() contract.Section { return &ThermalOxidation{Header: Header{MDef: SectionThermalOxidation}} },
	SectionSOD:              func() contract.Section { return &SOD{Header: Header{MDef: SectionSOD}} },
	SectionRIE:              func() contract.Section { return &RIE{Header: Header{MDef: SectionRIE}} },
	SectionWetEtching:       func() contract.Section { return &WetEtching{Header: Header{MDef: SectionWetEtching}} },
	SectionStripping:        func() contract.Section { return &Stripping{Header: Header{MDef: SectionStripping}} },
	SectionEquipment:        func() contract.Section { return &Equipment{Header: Header{MDef: SectionEquipment}} },
}

// New 按 section 名构造空记录；接受短名或目录中的全限定名。
func New(name string) (contract.Section, error) {
	if mk, ok := constructors[name]; ok {
		return mk(), nil
	}
	if def, err := Default().Lookup(name); err == nil {
		if mk, ok := constructors[def.Name]; ok {
			return mk(), nil
		}
	}
	return nil, fmt.Errorf("schema: %q: %w", name, contract.ErrUnknownSection)
}

// Names 返回全部可实例化的 section 短名（字典序）。
func Names() []string {
	out := make([]string, 0, len(constructors))
	for k := range constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// formulaRef 把 (化学式, 组成列表) 字段对适配为 contract.ChemicalRecord。
type formulaRef struct {
	formula *string
	list    *[]contract.ElementalComposition
}

func (r formulaRef) ChemicalFormula() string { return *r.formula }

func (r formulaRef) SetElementalComposition(list []contract.ElementalComposition) { *r.list = list }

func appendChemicals(out []contract.ChemicalRecord, cs []Chemical) []contract.ChemicalRecord {
	for i := range cs {
		out = append(out, &cs[i])
	}
	return out
}

func appendFluximeters(out []contract.ChemicalRecord, fs []MassflowController) []contract.ChemicalRecord {
	for i := range fs {
		out = append(out, &fs[i])
	}
	return out
}
