package contract

import (
	"context"
	"io"
)

// Decoder: 将单文件字节流解码为有序 Entry 序列，并分配 Index（0..n-1）。
// 约束：不跨文件合并；Index 严格递增；未知 section 返回 ErrUnknownSection；
// 结构错误返回包装 ErrDecode 的错误。
type Decoder interface {
	Decode(ctx context.Context, fileID FileID, r io.Reader) ([]Entry, error)
}
