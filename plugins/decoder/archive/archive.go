// Package archive 将条目文档（YAML 多文档流或 JSON）解码为 Entry 序列。
//
// 每个文档形如 {metadata: {...}, data: {m_def: <section>, ...}}；也接受省略外层、
// 直接以 m_def 开头的裸 section，以及顶层为序列（JSON 数组）的多条目文件。
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"fabschema/pkg/contract"
	"fabschema/pkg/schema"
)

// Options: 解码选项。
type Options struct {
	// Strict: 拒绝未声明字段。nil 时默认 true。
	Strict *bool `yaml:"strict,omitempty" json:"strict,omitempty"`
	// Namespace: 派生 entry_id 的 UUIDv5 命名空间；为空时使用 uuid.NameSpaceURL。
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
}

type Decoder struct {
	strict bool
	ns     uuid.UUID
}

var _ contract.Decoder = (*Decoder)(nil)

// New 创建解码器；Namespace 非法时返回错误。
func New(opts *Options) (*Decoder, error) {
	d := &Decoder{strict: true, ns: uuid.NameSpaceURL}
	if opts == nil {
		return d, nil
	}
	if opts.Strict != nil {
		d.strict = *opts.Strict
	}
	if opts.Namespace != "" {
		ns, err := uuid.Parse(opts.Namespace)
		if err != nil {
			return nil, fmt.Errorf("archive decoder: namespace: %w", err)
		}
		d.ns = ns
	}
	return d, nil
}

// EntryID 返回 (fileID, index) 的确定性 UUIDv5。
func (d *Decoder) EntryID(fileID contract.FileID, idx contract.Index) string {
	return uuid.NewSHA1(d.ns, []byte(string(fileID)+"#"+strconv.FormatInt(int64(idx), 10))).String()
}

// Decode 按文档顺序分配 Index（0..n-1）；空文档跳过。
func (d *Decoder) Decode(ctx context.Context, fileID contract.FileID, r io.Reader) ([]contract.Entry, error) {
	dec := yaml.NewDecoder(r)
	var out []contract.Entry
	for doc := 1; ; doc++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w: %w", fileID, doc, contract.ErrDecode, err)
		}
		root := &n
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		var nodes []*yaml.Node
		switch {
		case root.Kind == yaml.SequenceNode:
			nodes = root.Content
		case root.Kind == yaml.MappingNode:
			nodes = []*yaml.Node{root}
		case isNull(root):
			continue
		default:
			return nil, fmt.Errorf("%s: document %d: expected mapping: %w", fileID, doc, contract.ErrDecode)
		}
		for _, m := range nodes {
			idx := contract.Index(len(out))
			a, err := d.decodeArchive(m)
			if err != nil {
				return nil, fmt.Errorf("%s: document %d: entry %d: %w", fileID, doc, idx, err)
			}
			if a.Metadata.EntryID == "" {
				a.Metadata.EntryID = d.EntryID(fileID, idx)
			}
			out = append(out, contract.Entry{Index: idx, FileID: fileID, Archive: a})
		}
	}
	return out, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == 0 || n.Kind == yaml.DocumentNode || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func (d *Decoder) decodeArchive(m *yaml.Node) (contract.Archive, error) {
	var a contract.Archive
	if m.Kind != yaml.MappingNode {
		return a, fmt.Errorf("expected mapping: %w", contract.ErrDecode)
	}
	dataNode := m
	if mappingValue(m, "m_def") == nil {
		dataNode = nil
		for i := 0; i+1 < len(m.Content); i += 2 {
			k, v := m.Content[i].Value, m.Content[i+1]
			switch k {
			case "metadata":
				if err := d.decodeNode(v, &a.Metadata); err != nil {
					return a, fmt.Errorf("metadata: %w: %w", contract.ErrDecode, err)
				}
			case "data":
				dataNode = v
			default:
				if d.strict {
					return a, fmt.Errorf("line %d: unknown key %q: %w", m.Content[i].Line, k, contract.ErrDecode)
				}
			}
		}
		if dataNode == nil {
			return a, fmt.Errorf("missing data: %w", contract.ErrDecode)
		}
	}
	def := mappingValue(dataNode, "m_def")
	if def == nil || def.Kind != yaml.ScalarNode || def.Value == "" {
		return a, fmt.Errorf("data.m_def missing: %w", contract.ErrDecode)
	}
	sec, err := schema.New(def.Value)
	if err != nil {
		return a, err
	}
	if err := d.decodeNode(dataNode, sec); err != nil {
		return a, fmt.Errorf("data (%s): %w: %w", def.Value, contract.ErrDecode, err)
	}
	a.Data = sec
	a.Metadata.Section = sec.SectionName()
	return a, nil
}

// decodeNode 将节点重新编码后按 KnownFields 解码；yaml.Node.Decode 本身不做未知字段检查。
func (d *Decoder) decodeNode(n *yaml.Node, v any) error {
	if !d.strict {
		return n.Decode(v)
	}
	b, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
