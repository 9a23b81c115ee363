package contract

import (
	"context"
	"io"
)

// ArtifactID: 输出工件标识，与 FileID 复用同一表示。
type ArtifactID = FileID

// Writer: 将编码结果持久化到输出目录。
// 约束：同一 ArtifactID 单写者；流式写入；ctx 取消需尽快返回；错误直接上抛。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, r io.Reader) error
}
