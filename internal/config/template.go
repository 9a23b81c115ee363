package config

import "gopkg.in/yaml.v3"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 默认输入为当前目录，Writer 输出到 ./out 目录；
// - 组件名采用仓库内置实现；
// - 选项包含全部键并给出安全中性默认值。
func DefaultTemplateConfig() Config {
	d := Defaults()
	ff := false
	cfg := Config{
		Inputs:      []string{"."},
		Concurrency: 4,
		FailFast:    &ff,
		Logging:     d.Logging,
		Components:  d.Components,
	}
	cfg.Options.Reader = mustNode(`
buf_size: 65536
exclude_dir_names: [.git, node_modules, vendor, out]
extensions: [.yaml, .yml, .json]
`)
	cfg.Options.Decoder = mustNode(`
strict: true
namespace: ""
`)
	cfg.Options.Normalizer = mustNode(`
mode: atomic
lenient: false
`)
	cfg.Options.Encoder = mustNode(`
format: yaml
indent: 2
`)
	cfg.Options.Writer = mustNode(`
output_dir: out
atomic: true
flat: true
suffix: .normalized
perm_file: 0
perm_dir: 0
buf_size: 65536
`)
	return cfg
}

// mustNode 解析内置 YAML 片段为映射节点；片段非法属于编程错误。
func mustNode(src string) yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		panic(err)
	}
	return *doc.Content[0]
}
