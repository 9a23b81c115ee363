package contract

import "context"

// Warning: 非致命的归一化告警（如计数总和为 0）。
type Warning struct {
	Index   Index
	Section string
	Formula string
	Err     error
}

// Report: 单文件归一化汇总。
type Report struct {
	// Records: 访问到的 ChemicalRecord 数。
	Records int
	// Applied: 组成被整体替换的记录数。
	Applied  int
	Warnings []Warning
}

// Normalizer: 对同一文件的 Entry 原地执行归一化。
// 约束：
//   - 同步、无内部并发；
//   - 仅修改 Entry 所属记录的派生字段（组成列表、派生子记录）；
//   - 非致命情况记入 Report.Warnings，致命错误直接返回。
type Normalizer interface {
	Normalize(ctx context.Context, entries []Entry) (Report, error)
}
