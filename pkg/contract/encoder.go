package contract

import (
	"context"
	"io"
)

// Encoder: 将同一 FileID 的已归一化 Entry 按 Index 严格升序编码为输出流。
// 序列违规返回 ErrSeqInvalid；不引入跨文件状态。
type Encoder interface {
	Encode(ctx context.Context, fileID FileID, entries []Entry) (io.Reader, error)
}
