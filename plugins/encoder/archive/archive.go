// Package archive 将已归一化的 Entry 序列编码回条目文档（YAML 多文档或 JSON）。
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"fabschema/pkg/contract"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Options: 编码选项。
type Options struct {
	// Format: yaml（默认）或 json。
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	// Indent: 缩进空格数；<=0 时为 2。
	Indent int `yaml:"indent,omitempty" json:"indent,omitempty"`
}

type Encoder struct {
	format string
	indent int
}

var _ contract.Encoder = (*Encoder)(nil)

func New(opts *Options) (*Encoder, error) {
	e := &Encoder{format: FormatYAML, indent: 2}
	if opts == nil {
		return e, nil
	}
	if opts.Format != "" {
		switch f := strings.ToLower(opts.Format); f {
		case FormatYAML, FormatJSON:
			e.format = f
		default:
			return nil, fmt.Errorf("archive encoder: unsupported format %q", opts.Format)
		}
	}
	if opts.Indent > 0 {
		e.indent = opts.Indent
	}
	return e, nil
}

// Ext 返回输出文件扩展名（含点）。
func (e *Encoder) Ext() string { return "." + e.format }

// Encode 按 Index 升序输出；YAML 每个条目一个文档，JSON 单条目为对象、多条目为数组。
func (e *Encoder) Encode(ctx context.Context, fileID contract.FileID, entries []contract.Entry) (io.Reader, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if err := contract.ValidateSequence(fileID, entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return strings.NewReader(""), nil
	}
	if e.format == FormatJSON {
		return e.encodeJSON(entries)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(e.indent)
	for _, en := range entries {
		if err := enc.Encode(&en.Archive); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", fileID, en.Index, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (e *Encoder) encodeJSON(entries []contract.Entry) (io.Reader, error) {
	var v any
	if len(entries) == 1 {
		v = &entries[0].Archive
	} else {
		as := make([]*contract.Archive, len(entries))
		for i := range entries {
			as[i] = &entries[i].Archive
		}
		v = as
	}
	b, err := json.MarshalIndent(v, "", strings.Repeat(" ", e.indent))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(append(b, '\n')), nil
}
