package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabschema/pkg/contract"
)

func collect(t *testing.T, r *FileSystem, roots ...string) []string {
	t.Helper()
	var ids []string
	err := r.Iterate(context.Background(), roots, func(id contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		ids = append(ids, string(id))
		return nil
	})
	require.NoError(t, err)
	return ids
}

func write(t *testing.T, p, s string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(s), 0o644))
}

// TestIterateSingleFile 读取单文件（显式 root 不受扩展名限制）
func TestIterateSingleFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "a.txt")
	write(t, fp, "hello")
	var got []byte
	err := New(nil).Iterate(context.Background(), []string{fp}, func(id contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		b, err := io.ReadAll(rc)
		got = b
		assert.Equal(t, contract.NormalizeFileID(fp), id)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

// TestWalkOrderAndExtensions 先子目录后文件、字典序、扩展名过滤
func TestWalkOrderAndExtensions(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.yaml"), "x")
	write(t, filepath.Join(dir, "a.JSON"), "x")
	write(t, filepath.Join(dir, "notes.txt"), "x")
	write(t, filepath.Join(dir, "sub", "c.yml"), "x")

	ids := collect(t, New(nil), dir)
	var base []string
	for _, id := range ids {
		base = append(base, filepath.Base(id))
	}
	assert.Equal(t, []string{"c.yml", "a.JSON", "b.yaml"}, base)

	ids = collect(t, New(&Options{Extensions: []string{"txt"}}), dir)
	require.Len(t, ids, 1)
	assert.True(t, strings.HasSuffix(ids[0], "notes.txt"))
}

// TestExcludeDir 跳过目录
func TestExcludeDir(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "keep.yaml"), "k")
	write(t, filepath.Join(dir, "Skip", "bad.yaml"), "b")

	ids := collect(t, New(&Options{ExcludeDirNames: []string{"skip"}}), dir)
	require.Len(t, ids, 1)
	assert.Contains(t, ids[0], "keep.yaml")
}

// TestIterateDashMix 混用 '-' 返回错误
func TestIterateDashMix(t *testing.T) {
	err := New(nil).Iterate(context.Background(), []string{"-", "a"}, func(contract.FileID, io.ReadCloser) error { return nil })
	assert.Error(t, err)
}

// TestIterateStdin roots 为空或为 '-' 时读取 STDIN
func TestIterateStdin(t *testing.T) {
	for _, roots := range [][]string{nil, {"-"}} {
		old := os.Stdin
		pr, pw, err := os.Pipe()
		require.NoError(t, err)
		os.Stdin = pr
		go func() {
			pw.Write([]byte("m_def: Item"))
			pw.Close()
		}()
		var data []byte
		err = New(nil).Iterate(context.Background(), roots, func(id contract.FileID, rc io.ReadCloser) error {
			defer rc.Close()
			assert.Equal(t, contract.FileID("stdin"), id)
			data, _ = io.ReadAll(rc)
			return nil
		})
		os.Stdin = old
		require.NoError(t, err)
		assert.Equal(t, "m_def: Item", string(data))
	}
}

// TestIterateCtxCancel 上下文取消
func TestIterateCtxCancel(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "a.yaml")
	write(t, fp, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(nil).Iterate(ctx, []string{fp}, func(contract.FileID, io.ReadCloser) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

// TestYieldErrorStops 回调错误中止遍历并原样返回
func TestYieldErrorStops(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.yaml"), "x")
	write(t, filepath.Join(dir, "b.yaml"), "x")
	stop := io.ErrUnexpectedEOF
	calls := 0
	err := New(nil).Iterate(context.Background(), []string{dir}, func(contract.FileID, io.ReadCloser) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestMissingRoot(t *testing.T) {
	err := New(nil).Iterate(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, func(contract.FileID, io.ReadCloser) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestNewBufferedCloserDefault bufSize<=0 时使用默认
func TestNewBufferedCloserDefault(t *testing.T) {
	bc := newBufferedCloser(io.NopCloser(strings.NewReader("")), 0)
	assert.NotNil(t, bc.Reader)
	assert.NoError(t, bc.Close())
}
