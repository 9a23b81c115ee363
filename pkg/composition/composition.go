// Package composition 由化学式的 (元素, 计数) 序列计算元素组成。
//
// Atomic 只计算原子分数；MassWeighted 额外按标准原子量计算质量分数。
// 两者输出顺序与输入一致，不排序、不合并重复元素。
// 全部函数只读调用方数据与不可变的原子量表，可并发使用。
package composition

import (
	"fmt"
	"strings"

	"fabschema/pkg/contract"
)

// Mode 选择归一化变体。
type Mode string

const (
	ModeAtomic Mode = "atomic"
	ModeMass   Mode = "mass"
)

// ParseMode 解析配置/命令行中的模式名（不区分大小写；空串为 atomic）。
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAtomic:
		return ModeAtomic, nil
	case ModeMass:
		return ModeMass, nil
	default:
		return "", fmt.Errorf("composition: unknown mode %q: %w", s, contract.ErrInvariantViolation)
	}
}

// UnknownElementError: 元素符号不在原子量表中。
type UnknownElementError struct {
	Symbol string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("unknown element %q", e.Symbol)
}

func (e *UnknownElementError) Unwrap() error { return contract.ErrUnknownElement }

// Atomic 计算原子分数 counts[i]/Σcounts。
// Σcounts 为 0（含空输入）时返回 contract.ErrEmptyComposition。
func Atomic(elements []string, counts []int) ([]contract.ElementalComposition, error) {
	total, err := sum(elements, counts)
	if err != nil {
		return nil, err
	}
	out := make([]contract.ElementalComposition, len(elements))
	for i, el := range elements {
		out[i] = contract.ElementalComposition{
			Element:        el,
			AtomicFraction: float64(counts[i]) / total,
		}
	}
	return out, nil
}

// MassWeighted 在原子分数之外填写质量分数 m_i/Σm，m_i = 原子量(el_i)·counts[i]。
// 空组成优先于未知元素报告。
func MassWeighted(elements []string, counts []int) ([]contract.ElementalComposition, error) {
	out, err := Atomic(elements, counts)
	if err != nil {
		return nil, err
	}
	masses := make([]float64, len(elements))
	var totalMass float64
	for i, el := range elements {
		am, err := AtomicMass(el)
		if err != nil {
			return nil, err
		}
		masses[i] = am * float64(counts[i])
		totalMass += masses[i]
	}
	for i := range out {
		f := masses[i] / totalMass
		out[i].MassFraction = &f
	}
	return out, nil
}

// Compute 按模式分派。
func Compute(mode Mode, elements []string, counts []int) ([]contract.ElementalComposition, error) {
	switch mode {
	case ModeAtomic, "":
		return Atomic(elements, counts)
	case ModeMass:
		return MassWeighted(elements, counts)
	default:
		return nil, fmt.Errorf("composition: unknown mode %q: %w", mode, contract.ErrInvariantViolation)
	}
}

func sum(elements []string, counts []int) (float64, error) {
	if len(elements) != len(counts) {
		return 0, fmt.Errorf("composition: %d elements vs %d counts: %w", len(elements), len(counts), contract.ErrInvariantViolation)
	}
	var total float64
	for i, c := range counts {
		if c < 0 {
			return 0, fmt.Errorf("composition: negative count %d for %q: %w", c, elements[i], contract.ErrInvariantViolation)
		}
		total += float64(c)
	}
	if total == 0 {
		return 0, contract.ErrEmptyComposition
	}
	return total, nil
}
