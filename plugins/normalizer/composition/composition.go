// Package composition 是默认的归一化器：派生子记录后，对每条化学记录按化学式重算组成。
package composition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	comp "fabschema/pkg/composition"
	"fabschema/pkg/contract"
)

// Options: 归一化选项。
type Options struct {
	// Mode: atomic（默认）或 mass。
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty"`
	// Lenient: 化学式或派生错误降级为告警，文件照常输出。默认这些错误使文件失败；空组成始终只记告警。
	Lenient bool `yaml:"lenient,omitempty" json:"lenient,omitempty"`
}

type Normalizer struct {
	mode    comp.Mode
	lenient bool
}

var _ contract.Normalizer = (*Normalizer)(nil)

func New(opts *Options) (*Normalizer, error) {
	n := &Normalizer{mode: comp.ModeAtomic}
	if opts == nil {
		return n, nil
	}
	m, err := comp.ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	n.mode = m
	n.lenient = opts.Lenient
	return n, nil
}

// Mode 返回生效的组成模式。
func (n *Normalizer) Mode() comp.Mode { return n.mode }

// Normalize 按 Index 顺序原地处理；单条记录失败不影响其余记录。
func (n *Normalizer) Normalize(ctx context.Context, entries []contract.Entry) (contract.Report, error) {
	var rep contract.Report
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		e := &entries[i]
		sec := e.Archive.Data
		if sec == nil {
			continue
		}
		name := sec.SectionName()
		if d, ok := sec.(contract.Deriver); ok {
			if err := d.Derive(); err != nil {
				if !n.lenient {
					return rep, fmt.Errorf("%s#%d %s: %w", e.FileID, e.Index, name, err)
				}
				rep.Warnings = append(rep.Warnings, contract.Warning{Index: e.Index, Section: name, Err: err})
			}
		}
		for _, rec := range sec.Chemicals() {
			rep.Records++
			f := rec.ChemicalFormula()
			err := comp.Apply(rec, n.mode)
			switch {
			case err == nil:
				if strings.TrimSpace(f) != "" {
					rep.Applied++
				}
			case errors.Is(err, contract.ErrEmptyComposition) || n.lenient:
				rep.Warnings = append(rep.Warnings, contract.Warning{Index: e.Index, Section: name, Formula: f, Err: err})
			default:
				return rep, fmt.Errorf("%s#%d %s %q: %w", e.FileID, e.Index, name, f, err)
			}
		}
	}
	return rep, nil
}
