package contract

import (
	"context"
	"io"
)

// Reader: 条目文档来源（文件/目录/STDIN）。
// 约束：
// 1) 按文件维度回调，调用方负责 Close；
// 2) FileID 经 NormalizeFileID 规范化；
// 3) 仅提供字节流，不解码；
// 4) 内部不起并发。
type Reader interface {
	Iterate(ctx context.Context, roots []string, yield func(fileID FileID, r io.ReadCloser) error) error
}
