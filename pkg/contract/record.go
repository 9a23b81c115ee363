package contract

// ChemicalRecord: 可归一化的化学记录能力接口。
// 任何携带 chemical_formula 的记录通过该接口接入统一的组成归一化逻辑，
// 组成列表的字段名由实现自定（elemental_composition / material_elemental_composition 等）。
type ChemicalRecord interface {
	ChemicalFormula() string
	// SetElementalComposition 整体替换组成列表（不合并）。
	SetElementalComposition(list []ElementalComposition)
}

// Section: 可被注册、解码与归一化的记录类型。
// Chemicals 返回本记录及其子记录中全部 ChemicalRecord（按声明顺序，可为空）。
type Section interface {
	SectionName() string
	Chemicals() []ChemicalRecord
}

// Deriver: 可选扩展接口。实现方在归一化前由列表字段派生子记录
// （例如由 target_materials_formulas 生成 materials_etched）。
// 派生结果整体替换旧值；必须幂等。
type Deriver interface {
	Derive() error
}
