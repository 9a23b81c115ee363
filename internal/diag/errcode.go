package diag

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"fabschema/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeParse     Code = "parse"
	CodeElement   Code = "element"
	CodeEmpty     Code = "empty"
	CodeInvariant Code = "invariant"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
	CodeDecode    Code = "decode"
)

// Classify 将错误归为最小分类。
// 仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	switch {
	case errors.Is(err, contract.ErrMalformedFormula):
		return CodeParse
	case errors.Is(err, contract.ErrUnknownElement):
		return CodeElement
	case errors.Is(err, contract.ErrEmptyComposition):
		return CodeEmpty
	case errors.Is(err, contract.ErrDecode), errors.Is(err, contract.ErrUnknownSection):
		return CodeDecode
	case errors.Is(err, contract.ErrInvariantViolation),
		errors.Is(err, contract.ErrSeqInvalid),
		errors.Is(err, contract.ErrPathInvalid):
		return CodeInvariant
	}
	var perr *os.PathError
	if errors.As(err, &perr) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return CodeIO
	}
	return CodeUnknown
}
