package registry

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"

	"fabschema/pkg/contract"
	darc "fabschema/plugins/decoder/archive"
	earc "fabschema/plugins/encoder/archive"
	ncomp "fabschema/plugins/normalizer/composition"
	rfs "fabschema/plugins/reader/filesystem"
	wfs "fabschema/plugins/writer/filesystem"
)

// strictUnmarshal: 以 KnownFields 严格解码 Options 子树，拒绝未知字段。
// 空节点保持零值（默认选项）。
func strictUnmarshal(raw *yaml.Node, v any) error {
	if raw == nil || raw.Kind == 0 {
		return nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 Options 子树。
type NewReader func(raw *yaml.Node) (contract.Reader, error)

// NewDecoder 工厂签名：接收原样 Options 子树。
type NewDecoder func(raw *yaml.Node) (contract.Decoder, error)

// NewNormalizer 工厂签名：接收原样 Options 子树。
type NewNormalizer func(raw *yaml.Node) (contract.Normalizer, error)

// NewEncoder 工厂签名：接收原样 Options 子树。
type NewEncoder func(raw *yaml.Node) (contract.Encoder, error)

// NewWriter 工厂签名：接收原样 Options 子树。
type NewWriter func(raw *yaml.Node) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader
	"fs": func(raw *yaml.Node) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Decoder 工厂注册表。
var Decoder = map[string]NewDecoder{
	// archive: YAML/JSON 条目文档（metadata + data.m_def）
	"archive": func(raw *yaml.Node) (contract.Decoder, error) {
		var opts darc.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return darc.New(&opts)
	},
}

// Normalizer 工厂注册表。
var Normalizer = map[string]NewNormalizer{
	// composition: 由化学式重算元素组成（atomic|mass）
	"composition": func(raw *yaml.Node) (contract.Normalizer, error) {
		var opts ncomp.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ncomp.New(&opts)
	},
}

// Encoder 工厂注册表。
var Encoder = map[string]NewEncoder{
	// archive: 按 Index 升序输出 YAML 多文档或 JSON
	"archive": func(raw *yaml.Node) (contract.Encoder, error) {
		var opts earc.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return earc.New(&opts)
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（覆盖写/原子替换可配置）
	"fs": func(raw *yaml.Node) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}

// Names 返回注册表中的实现名（字典序）。
func Names[F any](m map[string]F) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
