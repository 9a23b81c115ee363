package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix: 环境变量覆盖前缀。
const EnvPrefix = "FABSCHEMA_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Concurrency: 1,
		Logging:     Logging{Level: "info"},
		Components: Components{
			Reader:     "fs",
			Decoder:    "archive",
			Normalizer: "composition",
			Encoder:    "archive",
			Writer:     "fs",
		},
	}
}

// Load 从文件路径或原始字节解析 Config（YAML 或 JSON；严格拒绝未知字段）。
func Load(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 标量/字符串为替换；Options 子树按映射键浅合并（over 中给出的键替换 base 中同名键）。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if over.FailFast != nil {
		v := *over.FailFast
		out.FailFast = &v
	}
	if lv := strings.TrimSpace(over.Logging.Level); lv != "" {
		out.Logging.Level = lv
	}

	// 组件名（空不覆盖）
	if over.Components.Reader != "" {
		out.Components.Reader = over.Components.Reader
	}
	if over.Components.Decoder != "" {
		out.Components.Decoder = over.Components.Decoder
	}
	if over.Components.Normalizer != "" {
		out.Components.Normalizer = over.Components.Normalizer
	}
	if over.Components.Encoder != "" {
		out.Components.Encoder = over.Components.Encoder
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	out.Options.Reader = mergeNode(base.Options.Reader, over.Options.Reader)
	out.Options.Decoder = mergeNode(base.Options.Decoder, over.Options.Decoder)
	out.Options.Normalizer = mergeNode(base.Options.Normalizer, over.Options.Normalizer)
	out.Options.Encoder = mergeNode(base.Options.Encoder, over.Options.Encoder)
	out.Options.Writer = mergeNode(base.Options.Writer, over.Options.Writer)
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 支持：INPUTS, CONCURRENCY, FAIL_FAST, LOG_LEVEL, COMPONENTS_*,
// 以及常用选项快捷键 MODE（normalizer.mode）、OUTPUT_DIR（writer.output_dir）、FORMAT（encoder.format）。
// 其余 FABSCHEMA_ 键忽略。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[len(EnvPrefix):eq]
		val := strings.TrimSpace(kv[eq+1:])
		switch key {
		case "INPUTS":
			over.Inputs = splitComma(val)
		case "CONCURRENCY":
			v, err := strconv.Atoi(val)
			if err != nil {
				return over, fmt.Errorf("config: %sCONCURRENCY: %w", EnvPrefix, err)
			}
			over.Concurrency = v
		case "FAIL_FAST":
			v, err := strconv.ParseBool(val)
			if err != nil {
				return over, fmt.Errorf("config: %sFAIL_FAST: %w", EnvPrefix, err)
			}
			over.FailFast = &v
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "COMPONENTS_READER":
			over.Components.Reader = val
		case "COMPONENTS_DECODER":
			over.Components.Decoder = val
		case "COMPONENTS_NORMALIZER":
			over.Components.Normalizer = val
		case "COMPONENTS_ENCODER":
			over.Components.Encoder = val
		case "COMPONENTS_WRITER":
			over.Components.Writer = val
		case "MODE":
			SetOption(&over.Options.Normalizer, "mode", val)
		case "OUTPUT_DIR":
			SetOption(&over.Options.Writer, "output_dir", val)
		case "FORMAT":
			SetOption(&over.Options.Encoder, "format", val)
		}
	}
	return over, nil
}

// SetOption 在 Options 子树中设置字符串键（子树为空时创建映射）。
func SetOption(n *yaml.Node, key, value string) {
	m := mapping(n)
	if m == nil {
		*n = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		m = n
	}
	val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = val
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
}

// OptionString 读取 Options 子树中的字符串键（不存在时为空）。
func OptionString(n yaml.Node, key string) string {
	m := mapping(&n)
	if m == nil {
		return ""
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key && m.Content[i+1].Kind == yaml.ScalarNode {
			return m.Content[i+1].Value
		}
	}
	return ""
}

// mapping 返回节点（或其文档根）对应的映射节点；非映射返回 nil。
func mapping(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	return n
}

func mergeNode(base, over yaml.Node) yaml.Node {
	if over.Kind == 0 {
		return cloneNode(base)
	}
	bm, om := mapping(&base), mapping(&over)
	if bm == nil || om == nil {
		return cloneNode(over)
	}
	out := cloneNode(*bm)
	for i := 0; i+1 < len(om.Content); i += 2 {
		k, v := om.Content[i], cloneNode(*om.Content[i+1])
		replaced := false
		for j := 0; j+1 < len(out.Content); j += 2 {
			if out.Content[j].Value == k.Value {
				out.Content[j+1] = &v
				replaced = true
				break
			}
		}
		if !replaced {
			kc := cloneNode(*k)
			out.Content = append(out.Content, &kc, &v)
		}
	}
	return out
}

func cloneNode(n yaml.Node) yaml.Node {
	out := n
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cc := cloneNode(*c)
			out.Content[i] = &cc
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
