package archive

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabschema/pkg/contract"
	"fabschema/pkg/schema"
)

func newDecoder(t *testing.T, opts *Options) *Decoder {
	t.Helper()
	d, err := New(opts)
	require.NoError(t, err)
	return d
}

func TestDecodeMultiDocument(t *testing.T) {
	src := `metadata:
  entry_name: deposition
data:
  m_def: ICP_CVD
  name: nitride
  chemical_formula: Si3N4
  fluximeters:
    - name: silane
      chemical_formula: SiH4
      massflow: 20
---
metadata:
  entry_id: fixed-id
data:
  m_def: fabrication_facilities.schema_packages.remove.RIE
  target_materials_formulas: [SiO2]
`
	d := newDecoder(t, nil)
	entries, err := d.Decode(context.Background(), "a.yaml", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e0 := entries[0]
	assert.Equal(t, contract.Index(0), e0.Index)
	assert.Equal(t, contract.FileID("a.yaml"), e0.FileID)
	assert.Equal(t, "deposition", e0.Archive.Metadata.EntryName)
	assert.Equal(t, schema.SectionICPCVD, e0.Archive.Metadata.Section)
	assert.Equal(t, d.EntryID("a.yaml", 0), e0.Archive.Metadata.EntryID)
	icp, ok := e0.Archive.Data.(*schema.ICPCVD)
	require.True(t, ok)
	assert.Equal(t, "Si3N4", icp.ChemicalFormula)
	require.Len(t, icp.Fluximeters, 1)
	require.NotNil(t, icp.Fluximeters[0].Massflow)
	assert.InDelta(t, 20.0, *icp.Fluximeters[0].Massflow, 1e-12)

	e1 := entries[1]
	assert.Equal(t, contract.Index(1), e1.Index)
	assert.Equal(t, "fixed-id", e1.Archive.Metadata.EntryID)
	assert.Equal(t, schema.SectionRIE, e1.Archive.Metadata.Section)
	rie, ok := e1.Archive.Data.(*schema.RIE)
	require.True(t, ok)
	assert.Equal(t, []string{"SiO2"}, rie.TargetMaterialsFormulas)
}

func TestDecodeBareSectionAndSequence(t *testing.T) {
	d := newDecoder(t, nil)

	entries, err := d.Decode(context.Background(), "bare.yaml", strings.NewReader("m_def: StartingMaterial\nchemical_formula: Si\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	sm, ok := entries[0].Archive.Data.(*schema.StartingMaterial)
	require.True(t, ok)
	assert.Equal(t, "Si", sm.ChemicalFormula)

	js := `[{"metadata":{},"data":{"m_def":"Equipment","name":"furnace"}},{"data":{"m_def":"SOG","chemical_formula":"SiO2"}}]`
	entries, err = d.Decode(context.Background(), "many.json", strings.NewReader(js))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, schema.SectionEquipment, entries[0].Archive.Metadata.Section)
	assert.Equal(t, schema.SectionSOG, entries[1].Archive.Metadata.Section)
	assert.Equal(t, contract.Index(1), entries[1].Index)
}

func TestDecodeSkipsEmptyDocuments(t *testing.T) {
	d := newDecoder(t, nil)
	entries, err := d.Decode(context.Background(), "e.yaml", strings.NewReader("---\n---\nm_def: Item\n---\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, contract.Index(0), entries[0].Index)

	entries, err = d.Decode(context.Background(), "empty.yaml", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"unknown section", "data:\n  m_def: Lithography\n", contract.ErrUnknownSection},
		{"missing m_def", "data:\n  name: x\n", contract.ErrDecode},
		{"missing data", "metadata:\n  entry_name: x\n", contract.ErrDecode},
		{"unknown field", "data:\n  m_def: SOG\n  thickness: 3\n", contract.ErrDecode},
		{"unknown top-level key", "extra: 1\ndata:\n  m_def: SOG\n", contract.ErrDecode},
		{"scalar document", "42\n", contract.ErrDecode},
		{"syntax", "data: [\n", contract.ErrDecode},
		{"wrong type", "data:\n  m_def: SOG\n  duration: fast\n", contract.ErrDecode},
	}
	d := newDecoder(t, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Decode(context.Background(), "bad.yaml", strings.NewReader(tc.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeLenient(t *testing.T) {
	strict := false
	d := newDecoder(t, &Options{Strict: &strict})
	entries, err := d.Decode(context.Background(), "l.yaml", strings.NewReader("extra: 1\ndata:\n  m_def: SOG\n  thickness: 3\n  chemical_formula: SiO2\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SiO2", entries[0].Archive.Data.(*schema.SOG).ChemicalFormula)
}

func TestEntryIDDeterministic(t *testing.T) {
	ns := uuid.NewSHA1(uuid.NameSpaceDNS, []byte("lab.example")).String()
	a := newDecoder(t, &Options{Namespace: ns})
	b := newDecoder(t, &Options{Namespace: ns})
	assert.Equal(t, a.EntryID("x.yaml", 3), b.EntryID("x.yaml", 3))
	assert.NotEqual(t, a.EntryID("x.yaml", 3), a.EntryID("x.yaml", 4))
	assert.NotEqual(t, a.EntryID("x.yaml", 3), newDecoder(t, nil).EntryID("x.yaml", 3))

	id, err := uuid.Parse(a.EntryID("x.yaml", 0))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())

	_, err = New(&Options{Namespace: "not-a-uuid"})
	assert.Error(t, err)
}

func TestDecodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDecoder(t, nil).Decode(ctx, "c.yaml", strings.NewReader("m_def: Item\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
