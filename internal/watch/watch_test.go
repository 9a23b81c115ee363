package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 16)} }

func (r *recorder) fn(_ context.Context, paths []string) {
	r.mu.Lock()
	r.calls = append(r.calls, paths)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		out = append(out, c...)
	}
	return out
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change batch")
	}
}

func start(t *testing.T, w *Watcher, r *recorder) (cancel func()) {
	t.Helper()
	ctx, c := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, r.fn) }()
	return func() {
		c()
		require.NoError(t, <-done)
	}
}

func yamlOnly(p string) bool { return strings.HasSuffix(p, ".yaml") }

func TestWatchDebouncedBatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	w, err := New([]string{dir}, Options{Debounce: 50 * time.Millisecond, Accept: yamlOnly, Ignore: []string{out}})
	require.NoError(t, err)
	r := newRecorder()
	stop := start(t, w, r)

	a := filepath.Join(dir, "a.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(a, []byte("m_def: Item\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.normalized.yaml"), []byte("x"), 0o644))
	r.wait(t)
	time.Sleep(150 * time.Millisecond)
	stop()

	got := r.all()
	assert.Contains(t, got, a)
	for _, p := range got {
		assert.Equal(t, a, p, "only the accepted input should be reported")
	}
}

func TestWatchNewSubdirectory(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	w, err := New([]string{dir}, Options{Debounce: 30 * time.Millisecond, Accept: yamlOnly})
	require.NoError(t, err)
	r := newRecorder()
	stop := start(t, w, r)
	defer stop()

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// 目录加入监听与写文件之间存在竞态：重复写直到收到事件
	deadline := time.Now().Add(5 * time.Second)
	p := filepath.Join(sub, "b.yaml")
	for {
		require.NoError(t, os.WriteFile(p, []byte("m_def: Item\n"), 0o644))
		select {
		case <-r.ch:
			assert.Contains(t, r.all(), p)
			return
		case <-time.After(200 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("no event from new subdirectory")
		}
	}
}

func TestWatchSingleFileRoot(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	f := filepath.Join(dir, "one.json")
	require.NoError(t, os.WriteFile(f, []byte("{}"), 0o644))

	w, err := New([]string{f}, Options{Debounce: 30 * time.Millisecond, Accept: yamlOnly})
	require.NoError(t, err)
	r := newRecorder()
	stop := start(t, w, r)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(f, []byte(`{"data":{}}`), 0o644))
	r.wait(t)
	stop()
	abs, _ := filepath.Abs(f)
	for _, p := range r.all() {
		got, _ := filepath.Abs(p)
		assert.Equal(t, abs, got)
	}
}

func TestNewMissingRoot(t *testing.T) {
	defer goleak.VerifyNone(t)
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, Options{})
	assert.Error(t, err)
}

func TestDue(t *testing.T) {
	w := &Watcher{opts: Options{Debounce: time.Second}, pending: map[string]time.Time{}}
	now := time.Now()
	w.pending["b"] = now.Add(-2 * time.Second)
	w.pending["a"] = now.Add(-time.Second)
	w.pending["c"] = now
	assert.Equal(t, []string{"a", "b"}, w.due(now))
	assert.Len(t, w.pending, 1)
}
