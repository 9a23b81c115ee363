package contract

// FileID: 逻辑文档ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Index: 单文件内稳定递增的条目索引（0..n-1）。
type Index int64

// Meta: 可选的轻量元信息；核心流程不读取其键值。
type Meta map[string]string

// FormulaToken: 化学式中的一个 (元素符号, 计数) 组。
// Element 为 1–2 个字母（首字母大写）；源串省略数字时 Count 为 1。
type FormulaToken struct {
	Element string `json:"element"`
	Count   int    `json:"count"`
}

// ElementalComposition: 由化学式派生的单个元素组成条目。
// 约束：
// - AtomicFraction ∈ [0,1]，同一化学式的全部条目之和为 1；
// - MassFraction 仅由质量加权变体填写，否则为 nil；
// - 条目顺序与元素在化学式中首次出现的顺序一致，不排序、不合并。
type ElementalComposition struct {
	Element        string   `yaml:"element" json:"element"`
	AtomicFraction float64  `yaml:"atomic_fraction" json:"atomic_fraction"`
	MassFraction   *float64 `yaml:"mass_fraction,omitempty" json:"mass_fraction,omitempty"`
}

// ArchiveMetadata: 条目级元信息（与记录内容解耦）。
type ArchiveMetadata struct {
	// EntryID: 条目标识；解码器在缺省时按 FileID+Index 派生确定性 UUID。
	EntryID   string `yaml:"entry_id,omitempty" json:"entry_id,omitempty"`
	EntryName string `yaml:"entry_name,omitempty" json:"entry_name,omitempty"`
	// Section: 根记录的 section 名（与 data.m_def 一致）。
	Section string `yaml:"section,omitempty" json:"section,omitempty"`
	Meta    Meta   `yaml:"meta,omitempty" json:"meta,omitempty"`
}

// Archive: 单个条目文档：元信息 + 根记录。
type Archive struct {
	Metadata ArchiveMetadata `yaml:"metadata" json:"metadata"`
	Data     Section         `yaml:"data" json:"data"`
}

// Entry: 解码后的原子单元（不可跨文件）。
// 约束：FileID 一致；Index 自 0 严格递增。
type Entry struct {
	Index   Index
	FileID  FileID
	Archive Archive
}
