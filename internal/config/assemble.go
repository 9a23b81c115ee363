package config

import (
	"errors"
	"fmt"
	"strings"

	"fabschema/internal/pipeline"
	"fabschema/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return errors.New("config: inputs empty")
	}
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		if strings.TrimSpace(r) == "" {
			return errors.New("config: input path cannot be empty")
		}
		if strings.TrimSpace(r) == "-" {
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return errors.New("config: '-' cannot be mixed with other roots")
	}
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be >= 1")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level %q invalid", cfg.Logging.Level)
	}
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := effName(cfg.Components.Decoder, d.Decoder); registry.Decoder[name] == nil {
		return fmt.Errorf("config: decoder %q not registered", name)
	}
	if name := effName(cfg.Components.Normalizer, d.Normalizer); registry.Normalizer[name] == nil {
		return fmt.Errorf("config: normalizer %q not registered", name)
	}
	if name := effName(cfg.Components.Encoder, d.Encoder); registry.Encoder[name] == nil {
		return fmt.Errorf("config: encoder %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传原样子树。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	d := Defaults().Components
	var comp pipeline.Components
	var err error
	if comp.Reader, err = registry.Reader[effName(cfg.Components.Reader, d.Reader)](&cfg.Options.Reader); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: options.reader: %w", err)
	}
	if comp.Decoder, err = registry.Decoder[effName(cfg.Components.Decoder, d.Decoder)](&cfg.Options.Decoder); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: options.decoder: %w", err)
	}
	if comp.Normalizer, err = registry.Normalizer[effName(cfg.Components.Normalizer, d.Normalizer)](&cfg.Options.Normalizer); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: options.normalizer: %w", err)
	}
	if comp.Encoder, err = registry.Encoder[effName(cfg.Components.Encoder, d.Encoder)](&cfg.Options.Encoder); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: options.encoder: %w", err)
	}
	if comp.Writer, err = registry.Writer[effName(cfg.Components.Writer, d.Writer)](&cfg.Options.Writer); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: options.writer: %w", err)
	}

	set := pipeline.Settings{
		Inputs:      cloneStrings(cfg.Inputs),
		Concurrency: cfg.Concurrency,
		FailFast:    cfg.FailFastEnabled(),
		Mode:        effName(strings.ToLower(OptionString(cfg.Options.Normalizer, "mode")), "atomic"),
	}
	return comp, set, nil
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
