package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "fabschema/internal/config"
	"fabschema/internal/diag"
	"fabschema/internal/pipeline"
	"fabschema/internal/watch"
)

// defaultConfigFile: 未显式指定时在工作目录查找。
const defaultConfigFile = "fabschema.yaml"

type normalizeFlags struct {
	config      string
	concurrency int
	mode        string
	outputDir   string
	watch       bool
	debounce    time.Duration
	status      bool
	failFast    bool
}

func newNormalizeCmd() *cobra.Command {
	var f normalizeFlags
	cmd := &cobra.Command{
		Use:   "normalize [roots...]",
		Short: "Normalize elemental composition of archive entries",
		Long: `按配置装配 Reader → Decoder → Normalizer → Encoder → Writer 并运行。
roots 可为文件或目录；"-" 表示 STDIN。配置优先级：CLI > ENV(.env) > 配置文件 > 默认。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "配置文件路径（YAML/JSON）；缺省读取 ./"+defaultConfigFile+"（若存在）")
	fl.IntVar(&f.concurrency, "concurrency", 0, "并发度（覆盖配置）")
	fl.StringVar(&f.mode, "mode", "", "组成模式 atomic|mass（覆盖 options.normalizer.mode）")
	fl.StringVar(&f.outputDir, "output-dir", "", "输出目录（覆盖 options.writer.output_dir）")
	fl.BoolVar(&f.watch, "watch", false, "首轮完成后监听 roots，变更文件重新归一化")
	fl.DurationVar(&f.debounce, "debounce", 300*time.Millisecond, "--watch 去抖时间")
	fl.BoolVar(&f.status, "status", true, "终端状态提示（stderr）")
	fl.BoolVar(&f.failFast, "fail-fast", false, "任一文件失败即取消整次运行")
	return cmd
}

func runNormalize(cmd *cobra.Command, roots []string, f normalizeFlags) error {
	start := time.Now()
	stderr := cmd.ErrOrStderr()
	corrID := genCorrID()
	// 在任何 ENV 读取前加载 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	logger := diag.NewLogger(corrID, "info")

	cfg, err := resolveConfig(cmd, roots, f)
	if err != nil {
		logger.ErrorWith("config", string(diag.Classify(err)), "first error", &start, "", "")
		_ = logger.Sync()
		return &exitError{code: exitConfig, err: err}
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(stderr, "配置校验失败: %v\n", err)
		_ = dumpConfig(stderr, cfg)
		logger.ErrorWith("config", string(diag.Classify(err)), "first error", &start, "", "")
		_ = logger.Sync()
		return &exitError{code: exitConfig}
	}

	// 使用最终日志级别重建 logger
	_ = logger.Sync()
	logger = diag.NewLogger(corrID, cfg.Logging.Level)
	defer func() { _ = logger.Sync() }()

	if err := preflightCheckOutputDir(cfg); err != nil {
		logger.ErrorWith("config", string(diag.Classify(err)), "first error", &start, "", "")
		return exitf(exitConfig, "输出目录不可写或无法创建: %w", err)
	}
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		logger.ErrorWith("config", string(diag.Classify(err)), "first error", &start, "", "")
		return exitf(exitConfig, "装配失败: %w", err)
	}

	if f.watch && len(set.Inputs) == 1 && set.Inputs[0] == "-" {
		return exitf(exitConfig, "--watch 不支持 STDIN")
	}

	term := diag.NewTerminal(stderr, f.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	logger.Debug("config", "effective", "", "", map[string]string{
		"inputs_count": strconv.Itoa(len(set.Inputs)),
		"concurrency":  strconv.Itoa(set.Concurrency),
		"fail_fast":    strconv.FormatBool(set.FailFast),
		"mode":         set.Mode,
		"reader":       cfg.Components.Reader,
		"decoder":      cfg.Components.Decoder,
		"normalizer":   cfg.Components.Normalizer,
		"encoder":      cfg.Components.Encoder,
		"writer":       cfg.Components.Writer,
		"output_dir":   cfgpkg.OptionString(cfg.Options.Writer, "output_dir"),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runErr := runOnce(ctx, comp, set, logger, term, stderr)
	if !f.watch {
		if runErr != nil {
			return &exitError{code: exitRuntime}
		}
		return nil
	}
	return watchLoop(ctx, comp, set, cfg, logger, term, stderr, f.debounce)
}

// resolveConfig 合并 默认 < 配置文件 < ENV < CLI。
func resolveConfig(cmd *cobra.Command, roots []string, f normalizeFlags) (cfgpkg.Config, error) {
	path := f.config
	if path == "" {
		path = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg := cfgpkg.Defaults()
	if path != "" {
		base, err := cfgpkg.Load(path, nil)
		if err != nil {
			return cfg, fmt.Errorf("配置解析失败: %w", err)
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, fmt.Errorf("环境变量解析失败: %w", err)
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	var overCLI cfgpkg.Config
	if len(roots) > 0 {
		overCLI.Inputs = roots
	}
	if f.concurrency > 0 {
		overCLI.Concurrency = f.concurrency
	}
	// 仅显式给出时覆盖，以便 --fail-fast=false 压过配置文件。
	if cmd.Flags().Changed("fail-fast") {
		v := f.failFast
		overCLI.FailFast = &v
	}
	if f.mode != "" {
		cfgpkg.SetOption(&overCLI.Options.Normalizer, "mode", f.mode)
	}
	if f.outputDir != "" {
		cfgpkg.SetOption(&overCLI.Options.Writer, "output_dir", f.outputDir)
	}
	return cfgpkg.Merge(cfg, overCLI), nil
}

// runOnce 运行一轮流水线，并输出终端汇总与指标。
func runOnce(ctx context.Context, comp pipeline.Components, set pipeline.Settings, logger *diag.Logger, term *diag.Terminal, stderr io.Writer) error {
	start := time.Now()
	diag.ResetMetrics()
	defer logMetrics(logger)
	if term != nil {
		term.RunStart(set.Concurrency, set.Mode)
	}
	t := logger.Start("pipeline", "run")
	sum, err := pipelineRun(ctx, comp, set, logger)
	if err != nil {
		code := string(diag.Classify(err))
		logger.ErrorWith("pipeline", code, "first error", &start, "", "")
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(stderr, "运行失败: %v\n", err)
		}
		if term != nil {
			term.RunFinish(false, time.Since(start))
		}
		return err
	}
	t.Finish("run", int64(sum.Entries))
	diag.IncOp("pipeline", "finish", "success")
	if term != nil {
		term.RunFinish(true, time.Since(start))
	}
	return nil
}

// logMetrics 以 debug 事件输出本轮计数快照。
func logMetrics(logger *diag.Logger) {
	kv := map[string]string{}
	for _, c := range diag.Snapshot() {
		kv[c.Key()] = strconv.FormatInt(c.Value, 10)
	}
	logger.Debug("pipeline", "metrics", "", "", kv)
}

// watchLoop 监听 roots，将去抖后的变更文件作为新一轮 Inputs；运行期失败不退出。
func watchLoop(ctx context.Context, comp pipeline.Components, set pipeline.Settings, cfg cfgpkg.Config, logger *diag.Logger, term *diag.Terminal, stderr io.Writer, debounce time.Duration) error {
	opts := watch.Options{
		Debounce: debounce,
		OnError: func(err error) {
			logger.WarnWith("watch", string(diag.Classify(err)), "watcher error", "", "", map[string]string{"error": err.Error()})
		},
	}
	if a, ok := comp.Reader.(interface{ Accepts(string) bool }); ok {
		opts.Accept = a.Accepts
	}
	if out := cfgpkg.OptionString(cfg.Options.Writer, "output_dir"); out != "" {
		opts.Ignore = append(opts.Ignore, out)
	}
	w, err := watch.New(set.Inputs, opts)
	if err != nil {
		return exitf(exitConfig, "监听失败: %w", err)
	}
	fprintf(stderr, "[watch] 监听 %s\n", strings.Join(set.Inputs, ", "))
	return w.Run(ctx, func(ctx context.Context, paths []string) {
		next := set
		next.Inputs = relPaths(paths)
		// 单轮失败已由 runOnce 记录，监听继续
		_ = runOnce(ctx, comp, next, logger, term, stderr)
	})
}

// relPaths 尽量转换为相对工作目录的路径，使非扁平输出布局保持相对结构。
func relPaths(paths []string) []string {
	wd, err := os.Getwd()
	if err != nil {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p
		if r, err := filepath.Rel(wd, p); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			out[i] = r
		}
	}
	return out
}

func dumpConfig(w io.Writer, c cfgpkg.Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	fprintf(w, "有效配置:\n%s", b)
	return nil
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// loadDotEnv 读取 KEY=VALUE 行写入进程环境；已存在的键不覆盖。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		val = unquote(strings.TrimSpace(val))
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

// unquote 去除成对引号；双引号内做最小转义处理。
func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	q := val[0]
	if (q != '\'' && q != '"') || val[len(val)-1] != q {
		return val
	}
	val = val[1 : len(val)-1]
	if q == '"' {
		val = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`).Replace(val)
	}
	return val
}

// preflightCheckOutputDir: 使用 fs writer 时检查输出目录（或其父目录）可写。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	name := strings.TrimSpace(cfg.Components.Writer)
	if name == "" {
		name = cfgpkg.Defaults().Components.Writer
	}
	if name != "fs" {
		return nil
	}
	dir := strings.TrimSpace(cfgpkg.OptionString(cfg.Options.Writer, "output_dir"))
	if dir == "" {
		// 交给装配阶段报错
		return nil
	}
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		return nil
	case err == nil:
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	case !os.IsNotExist(err):
		return err
	}
	parent := filepath.Dir(dir)
	// 逐级向上找到已存在的祖先目录（MkdirAll 语义）
	for {
		pst, err := os.Stat(parent)
		if err == nil {
			if !pst.IsDir() {
				return fmt.Errorf("父路径不是目录: %s", parent)
			}
			break
		}
		if !os.IsNotExist(err) {
			return err
		}
		next := filepath.Dir(parent)
		if next == parent {
			return fmt.Errorf("无法确定父目录: %s", dir)
		}
		parent = next
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	_ = os.RemoveAll(tmpd)
	return nil
}
