package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fabschema/internal/diag"
	"fabschema/pkg/contract"
)

// - 单点并发：仅此层管理并发与背压；原子组件均为同步、无内部并发。
// - 文件粒度：同一文件的 decode → normalize → encode → write 在同一 goroutine 内顺序执行。
// - 首错取消：FailFast 时任一文件失败即 cancel 整体；否则记录失败并继续其余文件。
// - 空组成仅告警：记入日志与计数，从不导致失败。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader     contract.Reader
	Decoder    contract.Decoder
	Normalizer contract.Normalizer
	Encoder    contract.Encoder
	Writer     contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Inputs      []string
	Concurrency int
	// FailFast: 首个文件失败即取消整个运行。
	FailFast bool
	// Mode: 仅用于终端提示。
	Mode string
}

// Summary: 单次运行汇总。
type Summary struct {
	Files    int
	Failed   int
	Entries  int
	Records  int
	Applied  int
	Warnings int
}

// ErrFilesFailed: 非 FailFast 模式下存在失败文件。
var ErrFilesFailed = errors.New("some files failed")

// extensioner: Encoder 可选能力，给出输出扩展名。
type extensioner interface{ Ext() string }

// pather: Writer 可选能力，将 ArtifactID 解析为落盘路径（用于单写者检查）。
type pather interface {
	Path(id contract.ArtifactID) (string, error)
}

// ArtifactFor 将输入 FileID 映射为输出 ArtifactID：替换扩展名为编码器扩展名。
func ArtifactFor(fileID contract.FileID, ext string) contract.ArtifactID {
	s := string(fileID)
	if ext == "" {
		return contract.ArtifactID(s)
	}
	return contract.ArtifactID(s[:len(s)-len(path.Ext(s))] + ext)
}

type run struct {
	comp   Components
	set    Settings
	log    *diag.Logger
	ext    string
	mu     sync.Mutex
	sum    Summary
	errs   []error
	claims map[string]contract.FileID
}

// Run 执行完整流水线：Reader → Decoder → Normalizer → Encoder → Writer。
// 文件之间并发（上限 Concurrency），文件内部顺序执行。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Summary, error) {
	if err := sanity(comp, set); err != nil {
		return Summary{}, fmt.Errorf("sanity: %w", err)
	}
	if logger == nil {
		logger = diag.Nop()
	}
	r := &run{comp: comp, set: set, log: logger, claims: map[string]contract.FileID{}}
	if e, ok := comp.Encoder.(extensioner); ok {
		r.ext = e.Ext()
	}
	n := set.Concurrency
	if n < 1 {
		n = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)

	rtimer := logger.Start("reader", "iterate")
	ierr := comp.Reader.Iterate(gctx, set.Inputs, func(fid contract.FileID, rc io.ReadCloser) error {
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return r.fail("reader", "read", fid, rtimer, err)
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			err := r.file(gctx, fid, data)
			if err == nil {
				return nil
			}
			r.mu.Lock()
			r.errs = append(r.errs, fmt.Errorf("%s: %w", fid, err))
			r.mu.Unlock()
			if set.FailFast {
				return fmt.Errorf("%s: %w", fid, err)
			}
			return nil
		})
		return nil
	})
	werr := g.Wait()

	if ierr != nil && !errors.Is(ierr, context.Canceled) {
		code := diag.Classify(ierr)
		logger.ErrorWith("reader", string(code), "iterate failed: "+ierr.Error(), rtimer.Since(), "", "")
		diag.IncOp("reader", "error", "error")
		if werr == nil {
			return r.sum, fmt.Errorf("reader iterate: %w", ierr)
		}
	}
	if werr != nil {
		return r.sum, werr
	}
	if ierr != nil {
		// 取消来自外部 ctx
		return r.sum, fmt.Errorf("reader iterate: %w", ierr)
	}
	rtimer.Finish("iterate", int64(r.sum.Files))
	diag.IncOp("reader", "finish", "success")
	if len(r.errs) > 0 {
		return r.sum, fmt.Errorf("%d of %d: %w: %w", len(r.errs), r.sum.Files, ErrFilesFailed, errors.Join(r.errs...))
	}
	return r.sum, nil
}

// file 处理单个文件并更新汇总与终端。
func (r *run) file(ctx context.Context, fid contract.FileID, data []byte) (err error) {
	start := time.Now()
	var entries, warnings int
	defer func() {
		r.mu.Lock()
		r.sum.Files++
		r.sum.Entries += entries
		r.sum.Warnings += warnings
		if err != nil {
			r.sum.Failed++
		}
		r.mu.Unlock()
		if t := diag.GetTerminal(); t != nil {
			t.FileFinish(string(fid), err == nil, entries, warnings, time.Since(start))
		}
	}()

	id := ArtifactFor(fid, r.ext)
	if err := r.claim(fid, id); err != nil {
		return r.fail("writer", "claim", fid, nil, err)
	}

	dt := r.log.StartWith("decoder", "decode", string(fid), "")
	es, err := r.comp.Decoder.Decode(ctx, fid, bytes.NewReader(data))
	if err != nil {
		return r.fail("decoder", "decode", fid, dt, err)
	}
	dt.Finish("decode", int64(len(es)))
	diag.IncOp("decoder", "finish", "success")
	entries = len(es)

	nt := r.log.StartWith("normalizer", "normalize", string(fid), "")
	rep, err := r.comp.Normalizer.Normalize(ctx, es)
	for _, w := range rep.Warnings {
		code := diag.Classify(w.Err)
		r.log.WarnWith("normalizer", string(code), w.Err.Error(), string(fid), strconv.FormatInt(int64(w.Index), 10),
			map[string]string{"section": w.Section, "formula": w.Formula})
		diag.IncOp("normalizer", "warn", "warn")
		diag.IncError("normalizer", string(code))
	}
	warnings = len(rep.Warnings)
	r.mu.Lock()
	r.sum.Records += rep.Records
	r.sum.Applied += rep.Applied
	r.mu.Unlock()
	if err != nil {
		return r.fail("normalizer", "normalize", fid, nt, err)
	}
	nt.Finish("normalize", int64(rep.Applied))
	diag.IncOp("normalizer", "finish", "success")

	et := r.log.StartWith("encoder", "encode", string(fid), "")
	out, err := r.comp.Encoder.Encode(ctx, fid, es)
	if err != nil {
		return r.fail("encoder", "encode", fid, et, err)
	}
	et.Finish("encode", int64(len(es)))
	diag.IncOp("encoder", "finish", "success")

	wt := r.log.StartWith("writer", "write", string(id), "")
	if err := r.comp.Writer.Write(ctx, id, out); err != nil {
		return r.fail("writer", "write", fid, wt, err)
	}
	wt.Finish("write", 1)
	diag.IncOp("writer", "finish", "success")
	return nil
}

// claim 保证同一落盘目标只有一个写者（扁平输出下不同目录的同名文件会冲突）。
func (r *run) claim(fid contract.FileID, id contract.ArtifactID) error {
	key := string(id)
	if p, ok := r.comp.Writer.(pather); ok {
		resolved, err := p.Path(id)
		if err != nil {
			return err
		}
		key = resolved
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.claims[key]; ok && prev != fid {
		return fmt.Errorf("output %s already written by %s: %w", key, prev, contract.ErrPathInvalid)
	}
	r.claims[key] = fid
	return nil
}

func (r *run) fail(comp, stage string, fid contract.FileID, t *diag.Timer, err error) error {
	code := diag.Classify(err)
	r.log.ErrorWith(comp, string(code), stage+" failed: "+err.Error(), t.Since(), string(fid), "")
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
	return fmt.Errorf("%s %s: %w", comp, stage, err)
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Decoder == nil || c.Normalizer == nil || c.Encoder == nil || c.Writer == nil {
		return errors.New("pipeline: missing components")
	}
	if len(s.Inputs) == 0 {
		return errors.New("pipeline: empty inputs")
	}
	return nil
}
