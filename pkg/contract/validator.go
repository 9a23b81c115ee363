package contract

import "fmt"

// 校验库函数（纯函数，无 I/O）：
// - ValidateSequence: 同一文件的 Entry 序列，FileID 一致且 Index 严格递增。
func ValidateSequence(fileID FileID, entries []Entry) error {
	for i, e := range entries {
		if e.FileID != fileID {
			return fmt.Errorf("entry %d belongs to %q, want %q: %w", e.Index, e.FileID, fileID, ErrSeqInvalid)
		}
		if i > 0 && e.Index <= entries[i-1].Index {
			return fmt.Errorf("index %d after %d: %w", e.Index, entries[i-1].Index, ErrSeqInvalid)
		}
		if e.Archive.Data == nil {
			return fmt.Errorf("entry %d has no data: %w", e.Index, ErrSeqInvalid)
		}
	}
	return nil
}

// CloneMeta 返回 Meta 的独立副本（nil 保持 nil）。
func CloneMeta(m Meta) Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
