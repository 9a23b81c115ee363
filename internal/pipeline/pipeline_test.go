package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zapcore"

	"fabschema/internal/diag"
	"fabschema/pkg/contract"
	darc "fabschema/plugins/decoder/archive"
	earc "fabschema/plugins/encoder/archive"
	ncomp "fabschema/plugins/normalizer/composition"
	rfs "fabschema/plugins/reader/filesystem"
	wfs "fabschema/plugins/writer/filesystem"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func components(t *testing.T, out string, lenient bool) Components {
	t.Helper()
	dec, err := darc.New(nil)
	require.NoError(t, err)
	norm, err := ncomp.New(&ncomp.Options{Lenient: lenient})
	require.NoError(t, err)
	enc, err := earc.New(nil)
	require.NoError(t, err)
	w, err := wfs.New(&wfs.Options{OutputDir: out})
	require.NoError(t, err)
	return Components{Reader: rfs.New(nil), Decoder: dec, Normalizer: norm, Encoder: enc, Writer: w}
}

func testLogger() (*diag.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return diag.NewLoggerTo(zapcore.AddSync(&buf), "test", "debug"), &buf
}

const icp = `metadata:
  entry_name: nitride run
data:
  m_def: ICP_CVD
  chemical_formula: SiO2
  fluximeters:
    - name: silane
      chemical_formula: SiH4
`

const rie = `data:
  m_def: RIE
  target_materials_formulas: [Si3N4]
`

func TestRunEndToEnd(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "a.yaml"), icp)
	writeFile(t, filepath.Join(in, "sub", "b.yml"), rie)
	writeFile(t, filepath.Join(in, "notes.txt"), "ignored")

	logger, logs := testLogger()
	sum, err := Run(context.Background(), components(t, out, false), Settings{Inputs: []string{in}, Concurrency: 2}, logger)
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 2, Entries: 2, Records: 3, Applied: 3}, sum)

	a, err := os.ReadFile(filepath.Join(out, "a.normalized.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(a), "material_elemental_composition:")
	assert.Contains(t, string(a), "entry_id:")
	b, err := os.ReadFile(filepath.Join(out, "b.normalized.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "materials_etched:")
	assert.Contains(t, string(b), "atomic_fraction: 0.42857142857142855")

	assert.Contains(t, logs.String(), `"comp":"writer"`)
	assert.Contains(t, logs.String(), `"stage":"finish"`)
}

func TestRunIdempotentOutput(t *testing.T) {
	in, out1, out2 := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "a.yaml"), icp)
	_, err := Run(context.Background(), components(t, out1, false), Settings{Inputs: []string{in}, Concurrency: 1}, nil)
	require.NoError(t, err)

	first := filepath.Join(out1, "a.normalized.yaml")
	_, err = Run(context.Background(), components(t, out2, false), Settings{Inputs: []string{first}, Concurrency: 1}, nil)
	require.NoError(t, err)

	b1, err := os.ReadFile(first)
	require.NoError(t, err)
	b2, err := os.ReadFile(filepath.Join(out2, "a.normalized.normalized.yaml"))
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestRunWarningsAreNotFatal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "z.yaml"), "data:\n  m_def: SOG\n  chemical_formula: Si0\n")
	logger, logs := testLogger()
	diag.ResetMetrics()

	sum, err := Run(context.Background(), components(t, out, false), Settings{Inputs: []string{in}, Concurrency: 1}, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Warnings)
	assert.Zero(t, sum.Applied)
	assert.FileExists(t, filepath.Join(out, "z.normalized.yaml"))
	assert.Contains(t, logs.String(), `"code":"empty"`)
	assert.EqualValues(t, 1, diag.Value("error_total", map[string]string{"comp": "normalizer", "code": "empty"}))
}

// 质量模式下未知元素使所在文件失败；零计数只记告警，文件照常输出。
func TestRunFormulaErrorsFailFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "bad.yaml"), "data:\n  m_def: Stripping\n  chemical_formula: Xx2O\n")
	writeFile(t, filepath.Join(in, "zero.yaml"), "data:\n  m_def: SOG\n  chemical_formula: Si0\n")

	comp := components(t, out, false)
	norm, err := ncomp.New(&ncomp.Options{Mode: "mass"})
	require.NoError(t, err)
	comp.Normalizer = norm

	sum, err := Run(context.Background(), comp, Settings{Inputs: []string{in}, Concurrency: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilesFailed)
	assert.ErrorIs(t, err, contract.ErrUnknownElement)
	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Warnings)
	assert.NoFileExists(t, filepath.Join(out, "bad.normalized.yaml"))
	assert.FileExists(t, filepath.Join(out, "zero.normalized.yaml"))

	// lenient 时同一错误降级为告警
	out2 := t.TempDir()
	comp = components(t, out2, true)
	norm, err = ncomp.New(&ncomp.Options{Mode: "mass", Lenient: true})
	require.NoError(t, err)
	comp.Normalizer = norm
	sum, err = Run(context.Background(), comp, Settings{Inputs: []string{in}, Concurrency: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Warnings)
	assert.FileExists(t, filepath.Join(out2, "bad.normalized.yaml"))
}

func TestRunContinuesAfterFileFailure(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "a.yaml"), "data:\n  m_def: Lithography\n")
	writeFile(t, filepath.Join(in, "b.yaml"), rie)

	sum, err := Run(context.Background(), components(t, out, false), Settings{Inputs: []string{in}, Concurrency: 2}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilesFailed)
	assert.ErrorIs(t, err, contract.ErrUnknownSection)
	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, 1, sum.Failed)
	assert.FileExists(t, filepath.Join(out, "b.normalized.yaml"))
	assert.NoFileExists(t, filepath.Join(out, "a.normalized.yaml"))
}

func TestRunOutputCollision(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(in, "one", "x.yaml"), rie)
	writeFile(t, filepath.Join(in, "two", "x.yaml"), rie)

	sum, err := Run(context.Background(), components(t, out, false), Settings{Inputs: []string{in}, Concurrency: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrPathInvalid)
	assert.Equal(t, 1, sum.Failed)
}

// 桩件 ----------------------------------------------------------
type manyReader struct{ n int }

func (m manyReader) Iterate(ctx context.Context, roots []string, yield func(contract.FileID, io.ReadCloser) error) error {
	for i := 0; i < m.n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(contract.FileID(filepath.Join("in", string(rune('a'+i))+".yaml")), io.NopCloser(strings.NewReader(rie))); err != nil {
			return err
		}
	}
	return nil
}

type failingDecoder struct{ calls atomic.Int32 }

func (d *failingDecoder) Decode(ctx context.Context, fid contract.FileID, r io.Reader) ([]contract.Entry, error) {
	d.calls.Add(1)
	return nil, contract.ErrDecode
}

type discardWriter struct{ writes atomic.Int32 }

func (w *discardWriter) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	w.writes.Add(1)
	_, err := io.Copy(io.Discard, r)
	return err
}

func TestRunFailFast(t *testing.T) {
	dec := &failingDecoder{}
	norm, _ := ncomp.New(nil)
	enc, _ := earc.New(nil)
	comp := Components{Reader: manyReader{n: 20}, Decoder: dec, Normalizer: norm, Encoder: enc, Writer: &discardWriter{}}

	sum, err := Run(context.Background(), comp, Settings{Inputs: []string{"in"}, Concurrency: 1, FailFast: true}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrDecode)
	assert.NotErrorIs(t, err, ErrFilesFailed)
	assert.Less(t, sum.Files, 20)
	assert.Less(t, int(dec.calls.Load()), 20)
}

func TestRunStubWriter(t *testing.T) {
	dec, _ := darc.New(nil)
	norm, _ := ncomp.New(nil)
	enc, _ := earc.New(&earc.Options{Format: "json"})
	w := &discardWriter{}
	comp := Components{Reader: manyReader{n: 5}, Decoder: dec, Normalizer: norm, Encoder: enc, Writer: w}

	sum, err := Run(context.Background(), comp, Settings{Inputs: []string{"in"}, Concurrency: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Files)
	assert.Equal(t, 5, sum.Applied)
	assert.EqualValues(t, 5, w.writes.Load())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dec, _ := darc.New(nil)
	norm, _ := ncomp.New(nil)
	enc, _ := earc.New(nil)
	comp := Components{Reader: manyReader{n: 3}, Decoder: dec, Normalizer: norm, Encoder: enc, Writer: &discardWriter{}}
	_, err := Run(ctx, comp, Settings{Inputs: []string{"in"}, Concurrency: 1}, nil)
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestRunSanity(t *testing.T) {
	_, err := Run(context.Background(), Components{}, Settings{Inputs: []string{"x"}}, nil)
	assert.Error(t, err)
	comp := components(t, t.TempDir(), false)
	_, err = Run(context.Background(), comp, Settings{}, nil)
	assert.Error(t, err)
}

func TestArtifactFor(t *testing.T) {
	assert.Equal(t, contract.ArtifactID("dir/a.yaml"), ArtifactFor("dir/a.json", ".yaml"))
	assert.Equal(t, contract.ArtifactID("stdin.json"), ArtifactFor("stdin", ".json"))
	assert.Equal(t, contract.ArtifactID("a.yml"), ArtifactFor("a.yml", ""))
}
