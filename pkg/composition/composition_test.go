package composition

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabschema/pkg/contract"
	"fabschema/pkg/formula"
)

const eps = 1e-9

func fractions(list []contract.ElementalComposition) []float64 {
	out := make([]float64, len(list))
	for i, c := range list {
		out[i] = c.AtomicFraction
	}
	return out
}

// TestAtomicKnownFormulas 已知化学式的原子分数
func TestAtomicKnownFormulas(t *testing.T) {
	cases := []struct {
		formula  string
		elements []string
		want     []float64
	}{
		{"SiO2", []string{"Si", "O"}, []float64{1.0 / 3, 2.0 / 3}},
		{"Al2O3", []string{"Al", "O"}, []float64{0.4, 0.6}},
		{"Si", []string{"Si"}, []float64{1}},
		{"CH3CH3", []string{"C", "H", "C", "H"}, []float64{0.125, 0.375, 0.125, 0.375}},
	}
	for _, tt := range cases {
		t.Run(tt.formula, func(t *testing.T) {
			els, cnts, err := formula.Parse(tt.formula)
			require.NoError(t, err)
			got, err := Atomic(els, cnts)
			require.NoError(t, err)
			require.Len(t, got, len(tt.elements))
			for i, c := range got {
				assert.Equal(t, tt.elements[i], c.Element)
				assert.Nil(t, c.MassFraction)
			}
			if diff := cmp.Diff(tt.want, fractions(got), cmpopts.EquateApprox(0, eps)); diff != "" {
				t.Fatalf("fractions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestAtomicFractionsSumToOne 任意正计数下分数之和为 1 且位于 [0,1]
func TestAtomicFractionsSumToOne(t *testing.T) {
	inputs := [][]int{{1}, {1, 2}, {7, 0, 3}, {12, 22, 11}, {1, 1, 1, 1, 1, 1, 1}, {1000000, 1}}
	for _, cnts := range inputs {
		els := make([]string, len(cnts))
		for i := range els {
			els[i] = "C"
		}
		got, err := Atomic(els, cnts)
		require.NoError(t, err)
		var total float64
		for _, c := range got {
			assert.GreaterOrEqual(t, c.AtomicFraction, 0.0)
			assert.LessOrEqual(t, c.AtomicFraction, 1.0)
			total += c.AtomicFraction
		}
		assert.InDelta(t, 1.0, total, eps)
	}
}

// TestEmptyComposition 计数和为 0 时两种模式都返回 ErrEmptyComposition
func TestEmptyComposition(t *testing.T) {
	for _, mode := range []Mode{ModeAtomic, ModeMass} {
		_, err := Compute(mode, []string{"Si", "O"}, []int{0, 0})
		assert.ErrorIs(t, err, contract.ErrEmptyComposition)
		_, err = Compute(mode, nil, nil)
		assert.ErrorIs(t, err, contract.ErrEmptyComposition)
	}
	// 空组成优先于未知元素
	_, err := MassWeighted([]string{"Xx"}, []int{0})
	assert.ErrorIs(t, err, contract.ErrEmptyComposition)
}

// TestInvariantViolations 长度不一致、负计数、未知模式
func TestInvariantViolations(t *testing.T) {
	_, err := Atomic([]string{"Si"}, []int{1, 2})
	assert.ErrorIs(t, err, contract.ErrInvariantViolation)
	_, err = Atomic([]string{"Si", "O"}, []int{1, -2})
	assert.ErrorIs(t, err, contract.ErrInvariantViolation)
	_, err = Compute(Mode("molar"), []string{"Si"}, []int{1})
	assert.ErrorIs(t, err, contract.ErrInvariantViolation)
}

// TestMassWeightedSilica SiO2 的质量分数 ≈ [0.4674, 0.5326]
func TestMassWeightedSilica(t *testing.T) {
	got, err := MassWeighted([]string{"Si", "O"}, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].MassFraction)
	require.NotNil(t, got[1].MassFraction)
	assert.InDelta(t, 0.4674, *got[0].MassFraction, 1e-4)
	assert.InDelta(t, 0.5326, *got[1].MassFraction, 1e-4)
	assert.InDelta(t, 1.0, *got[0].MassFraction+*got[1].MassFraction, eps)
	// 原子分数不受质量加权影响
	assert.InDelta(t, 1.0/3, got[0].AtomicFraction, eps)
}

// TestUnknownElement 未知符号：质量模式失败，原子模式成功
func TestUnknownElement(t *testing.T) {
	_, err := MassWeighted([]string{"Xx"}, []int{2})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrUnknownElement)
	var ue *UnknownElementError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Xx", ue.Symbol)

	got, err := Atomic([]string{"Xx"}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, fractions(got))
}

// TestAtomicMassTable 原子量表覆盖 118 个元素且取值为正
func TestAtomicMassTable(t *testing.T) {
	assert.Len(t, elements, 118)
	assert.Len(t, bySymbol, 118)
	for _, e := range elements {
		assert.Greater(t, e.Mass, 0.0, e.Symbol)
	}
	m, err := AtomicMass("Si")
	require.NoError(t, err)
	assert.Equal(t, 28.085, m)
	m, err = AtomicMass("O")
	require.NoError(t, err)
	assert.Equal(t, 15.999, m)
	assert.Equal(t, 14, AtomicNumber("Si"))
	assert.Equal(t, 118, AtomicNumber("Og"))
	assert.Equal(t, 0, AtomicNumber("si"))
	_, err = AtomicMass("si")
	assert.ErrorIs(t, err, contract.ErrUnknownElement)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAtomic, m)
	m, err = ParseMode(" MASS ")
	require.NoError(t, err)
	assert.Equal(t, ModeMass, m)
	_, err = ParseMode("weight")
	assert.Error(t, err)
}

// TestConcurrentCompute 并发调用结果一致（配合 -race）
func TestConcurrentCompute(t *testing.T) {
	want, err := MassWeighted([]string{"Hf", "O"}, []int{1, 2})
	require.NoError(t, err)
	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := MassWeighted([]string{"Hf", "O"}, []int{1, 2})
			if err != nil {
				errs <- err.Error()
				return
			}
			if math.Abs(*got[0].MassFraction-*want[0].MassFraction) > eps {
				errs <- "mass fraction differs"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
