package diag

import (
	"sort"
	"strings"
	"sync"
)

// 进程内最小指标：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累加）

type opKey struct{ comp, stage, result string }

type errKey struct{ comp, code string }

type durKey struct{ comp, stage string }

var metrics = struct {
	mu   sync.Mutex
	ops  map[opKey]int64
	errs map[errKey]int64
	durs map[durKey]int64
}{
	ops:  map[opKey]int64{},
	errs: map[errKey]int64{},
	durs: map[durKey]int64{},
}

// IncOp 累加操作计数（result=success|error|warn）。
func IncOp(comp, stage, result string) {
	metrics.mu.Lock()
	metrics.ops[opKey{comp, stage, result}]++
	metrics.mu.Unlock()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	metrics.mu.Lock()
	metrics.errs[errKey{comp, code}]++
	metrics.mu.Unlock()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	metrics.mu.Lock()
	metrics.durs[durKey{comp, stage}] += durMS
	metrics.mu.Unlock()
}

// Counter: 快照中的单个计数。
type Counter struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
	Value  int64             `json:"value"`
}

// Snapshot 返回当前全部计数（按名称与标签稳定排序）。
func Snapshot() []Counter {
	metrics.mu.Lock()
	out := make([]Counter, 0, len(metrics.ops)+len(metrics.errs)+len(metrics.durs))
	for k, v := range metrics.ops {
		out = append(out, Counter{"op_total", map[string]string{"comp": k.comp, "stage": k.stage, "result": k.result}, v})
	}
	for k, v := range metrics.errs {
		out = append(out, Counter{"error_total", map[string]string{"comp": k.comp, "code": k.code}, v})
	}
	for k, v := range metrics.durs {
		out = append(out, Counter{"op_duration_ms", map[string]string{"comp": k.comp, "stage": k.stage}, v})
	}
	metrics.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return labelKey(out[i].Labels) < labelKey(out[j].Labels)
	})
	return out
}

// Key 返回 name{k=v,...} 形式的稳定键。
func (c Counter) Key() string {
	return c.Name + "{" + strings.TrimSuffix(labelKey(c.Labels), ",") + "}"
}

// Value 返回指定计数；不存在时为 0。
func Value(name string, labels map[string]string) int64 {
	want := labelKey(labels)
	for _, c := range Snapshot() {
		if c.Name == name && labelKey(c.Labels) == want {
			return c.Value
		}
	}
	return 0
}

// ResetMetrics 清空全部计数。
func ResetMetrics() {
	metrics.mu.Lock()
	metrics.ops = map[opKey]int64{}
	metrics.errs = map[errKey]int64{}
	metrics.durs = map[durKey]int64{}
	metrics.mu.Unlock()
}

func labelKey(m map[string]string) string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	s := ""
	for _, k := range ks {
		s += k + "=" + m[k] + ","
	}
	return s
}
