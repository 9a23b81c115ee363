package config

import "gopkg.in/yaml.v3"

// Config: 运行期只读配置（一次解析，运行期不变）。
// YAML/JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	Inputs      []string `yaml:"inputs"`
	Concurrency int      `yaml:"concurrency"`
	// FailFast: 任一文件失败即取消整次运行（记录级错误是否致命见 options.normalizer.fail_fast）。
	// nil 表示未设置（默认 false），以便 Merge 区分“未覆盖”和“显式 false”。
	FailFast *bool   `yaml:"fail_fast,omitempty"`
	Logging  Logging `yaml:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `yaml:"components"`

	// 各组件 Options 子树，原样传入工厂。
	Options Options `yaml:"options"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `yaml:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader     string `yaml:"reader"`
	Decoder    string `yaml:"decoder"`
	Normalizer string `yaml:"normalizer"`
	Encoder    string `yaml:"encoder"`
	Writer     string `yaml:"writer"`
}

// Options: 各组件的原样 Options 子树（零值 Node 表示未给出）。
type Options struct {
	Reader     yaml.Node `yaml:"reader,omitempty"`
	Decoder    yaml.Node `yaml:"decoder,omitempty"`
	Normalizer yaml.Node `yaml:"normalizer,omitempty"`
	Encoder    yaml.Node `yaml:"encoder,omitempty"`
	Writer     yaml.Node `yaml:"writer,omitempty"`
}

// FailFastEnabled 返回生效的 fail_fast。
func (c Config) FailFastEnabled() bool { return c.FailFast != nil && *c.FailFast }
