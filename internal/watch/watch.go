// Package watch 监听输入根目录的变更，去抖后批量回调变更的文件路径。
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options: 监听选项。
type Options struct {
	// Debounce: 同一路径最后一次事件后的静默时间；<=0 时为 300ms。
	Debounce time.Duration
	// Accept: 过滤文件路径；nil 表示全部接受。
	Accept func(path string) bool
	// Ignore: 忽略这些目录（及其子目录）下的事件，通常为输出目录。
	Ignore []string
	// OnError: 监听器内部错误回调（可为 nil）。
	OnError func(err error)
}

// Watcher 非并发安全；Run 只能调用一次。
type Watcher struct {
	fw      *fsnotify.Watcher
	opts    Options
	files   map[string]struct{} // 显式给出的单文件 root
	trees   map[string]struct{} // 递归加入的目录
	ignore  []string
	pending map[string]time.Time
}

// New 为 roots 建立监听：目录递归加入，单文件 root 监听其父目录并只接受该文件。
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fw: fw, opts: opts, files: map[string]struct{}{}, trees: map[string]struct{}{}, pending: map[string]time.Time{}}
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
	for _, root := range roots {
		st, err := os.Stat(root)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		if !st.IsDir() {
			abs, _ := filepath.Abs(root)
			w.files[abs] = struct{}{}
			if err := fw.Add(filepath.Dir(abs)); err != nil {
				_ = fw.Close()
				return nil, err
			}
			continue
		}
		if err := w.addTree(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.fw.Add(p); err != nil {
			return err
		}
		if abs, err := filepath.Abs(p); err == nil {
			w.trees[abs] = struct{}{}
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, ig := range w.ignore {
		if abs == ig || strings.HasPrefix(abs, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run 阻塞直至 ctx 结束；每轮去抖后以字典序回调变更文件。回调在本 goroutine 内同步执行。
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, paths []string)) error {
	defer w.fw.Close()
	tick := time.NewTicker(w.opts.Debounce / 4)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}
		case now := <-tick.C:
			if paths := w.due(now); len(paths) > 0 {
				fn(ctx, paths)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if w.ignored(ev.Name) {
		return
	}
	st, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	abs, _ := filepath.Abs(ev.Name)
	if st.IsDir() {
		if _, ok := w.trees[filepath.Dir(abs)]; ok && ev.Has(fsnotify.Create) {
			if err := w.addTree(ev.Name); err != nil && w.opts.OnError != nil {
				w.opts.OnError(err)
			}
		}
		return
	}
	if _, explicit := w.files[abs]; !explicit {
		if _, ok := w.trees[filepath.Dir(abs)]; !ok {
			return
		}
		if w.opts.Accept != nil && !w.opts.Accept(ev.Name) {
			return
		}
	}
	w.pending[ev.Name] = time.Now()
}

func (w *Watcher) due(now time.Time) []string {
	var out []string
	for p, t := range w.pending {
		if now.Sub(t) >= w.opts.Debounce {
			out = append(out, p)
			delete(w.pending, p)
		}
	}
	sort.Strings(out)
	return out
}
