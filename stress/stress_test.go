package stress

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cfgpkg "fabschema/internal/config"
	"fabschema/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// formulas: 轮换使用的化学式，覆盖多字母元素与多位计数。
var formulas = []string{"SiO2", "Si3N4", "Al2O3", "HfO2", "TiN", "C6H12O6", "SF6", "CHF3"}

// genArchives 生成 files 个文件，每个含 entries 个 ICP_CVD 条目（各 1 个主记录 + 2 个流量计）。
func genArchives(t *testing.T, dir string, files, entries int) {
	t.Helper()
	for f := 0; f < files; f++ {
		var b strings.Builder
		for e := 0; e < entries; e++ {
			if e > 0 {
				b.WriteString("---\n")
			}
			fmt.Fprintf(&b, "metadata:\n  entry_name: run %d-%d\ndata:\n  m_def: ICP_CVD\n  chemical_formula: %s\n  fluximeters:\n", f, e, formulas[(f+e)%len(formulas)])
			fmt.Fprintf(&b, "    - name: a\n      chemical_formula: %s\n", formulas[(f+e+1)%len(formulas)])
			fmt.Fprintf(&b, "    - name: b\n      chemical_formula: %s\n", formulas[(f+e+2)%len(formulas)])
		}
		p := filepath.Join(dir, fmt.Sprintf("batch-%03d.yaml", f))
		require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	}
}

func baseConfig(input, outDir string) cfgpkg.Config {
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Inputs = []string{input}
	cfg.Logging.Level = "error"
	cfgpkg.SetOption(&cfg.Options.Writer, "output_dir", outDir)
	return cfg
}

// TestStress 在不同并发度下运行流水线并记录延迟统计。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress")
	}
	const files, entries = 64, 50
	in := t.TempDir()
	genArchives(t, in, files, entries)

	for _, conc := range []int{1, 4, 16, 64} {
		t.Run(fmt.Sprintf("concurrency_%d", conc), func(t *testing.T) {
			const runs = 3
			latencies := make([]time.Duration, 0, runs)
			for i := 0; i < runs; i++ {
				out := t.TempDir()
				cfg := baseConfig(in, out)
				cfg.Concurrency = conc
				comp, set, err := cfgpkg.Assemble(cfg)
				require.NoError(t, err)

				start := time.Now()
				sum, err := pipeline.Run(context.Background(), comp, set, nil)
				latencies = append(latencies, time.Since(start))
				require.NoError(t, err)
				assert.Equal(t, pipeline.Summary{Files: files, Entries: files * entries, Records: 3 * files * entries, Applied: 3 * files * entries}, sum)

				got, err := filepath.Glob(filepath.Join(out, "*.normalized.yaml"))
				require.NoError(t, err)
				assert.Len(t, got, files)
			}
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			t.Logf("concurrency=%d runs=%d min=%s p50=%s max=%s", conc, runs,
				latencies[0], latencies[len(latencies)/2], latencies[len(latencies)-1])
		})
	}
}
