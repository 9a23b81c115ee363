package contract

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubRecord struct {
	formula string
	list    []ElementalComposition
}

func (r *stubRecord) ChemicalFormula() string                        { return r.formula }
func (r *stubRecord) SetElementalComposition(l []ElementalComposition) { r.list = l }

type stubSection struct{ recs []ChemicalRecord }

func (stubSection) SectionName() string            { return "Stub" }
func (s stubSection) Chemicals() []ChemicalRecord { return s.recs }

func TestNormalizeFileID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{filepath.Join("archives", "run", "a.yaml"), "archives/run/a.yaml"},
		{`archives\etch\b.yml`, "archives/etch/b.yml"},
		{"./x/../y.json", "y.json"},
		{"path//to///a.yaml", "path/to/a.yaml"},
		{`C:\runs\..\a.yaml`, "C:/a.yaml"},
		{"/abs/./a.yaml", "/abs/a.yaml"},
		{"", "."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, FileID(tt.want), NormalizeFileID(tt.in))
		})
	}
}

func TestValidateSequence(t *testing.T) {
	mk := func(f FileID, idx ...Index) []Entry {
		out := make([]Entry, 0, len(idx))
		for _, i := range idx {
			out = append(out, Entry{Index: i, FileID: f, Archive: Archive{Data: stubSection{}}})
		}
		return out
	}
	assert.NoError(t, ValidateSequence("a", nil))
	assert.NoError(t, ValidateSequence("a", mk("a", 0, 1, 3)))

	cases := map[string][]Entry{
		"duplicate index": mk("a", 0, 1, 1),
		"descending":      mk("a", 2, 1),
		"other file":      append(mk("a", 0), mk("b", 1)...),
		"no data":         {{Index: 0, FileID: "a"}},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSequence("a", entries), ErrSeqInvalid)
		})
	}
}

func TestCloneMeta(t *testing.T) {
	assert.Nil(t, CloneMeta(nil))
	m := Meta{"operator": "lab-a"}
	c := CloneMeta(m)
	m["operator"] = "lab-b"
	assert.Equal(t, "lab-a", c["operator"])
}

// 记录能力接口只通过整体替换修改组成。
func TestChemicalRecordReplace(t *testing.T) {
	r := &stubRecord{formula: "SiO2", list: []ElementalComposition{{Element: "X", AtomicFraction: 1}}}
	var s Section = stubSection{recs: []ChemicalRecord{r}}
	for _, rec := range s.Chemicals() {
		rec.SetElementalComposition([]ElementalComposition{{Element: "Si", AtomicFraction: 0.5}, {Element: "O", AtomicFraction: 0.5}})
	}
	assert.Equal(t, "SiO2", r.ChemicalFormula())
	assert.Len(t, r.list, 2)
	assert.Equal(t, "Si", r.list[0].Element)
}

func TestSentinelsDistinct(t *testing.T) {
	all := []error{
		ErrMalformedFormula, ErrUnknownElement, ErrEmptyComposition, ErrUnknownSection,
		ErrDecode, ErrSeqInvalid, ErrPathInvalid, ErrInvariantViolation,
	}
	for i, a := range all {
		wrapped := fmt.Errorf("stage: %w", a)
		for j, b := range all {
			assert.Equal(t, i == j, errors.Is(wrapped, b), "%v vs %v", a, b)
		}
	}
}
