package contract

import "errors"

// 最小错误分类（用于上层策略判定与日志分类）。
var (
	// ErrMalformedFormula: 化学式为空或包含非法字符/孤立的小写字母与数字。
	ErrMalformedFormula = errors.New("malformed chemical formula")
	// ErrUnknownElement: 元素符号不在原子量表中（仅质量加权变体）。
	ErrUnknownElement = errors.New("unknown element")
	// ErrEmptyComposition: 计数总和为 0；可恢复，调用方保留原有组成不变。
	ErrEmptyComposition = errors.New("no elements provided")
	// ErrUnknownSection: data.m_def 未注册。
	ErrUnknownSection = errors.New("unknown section")
	// ErrDecode: 条目文档结构非法。
	ErrDecode = errors.New("archive decode failed")
	// ErrSeqInvalid: 条目序列违规（Index 非严格递增或跨文件）。
	ErrSeqInvalid = errors.New("sequence invalid")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
)
