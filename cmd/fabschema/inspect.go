package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fabschema/pkg/composition"
	"fabschema/pkg/contract"
	"fabschema/pkg/formula"
	"fabschema/pkg/menu"
	"fabschema/pkg/schema"
)

// parseResult: parse 子命令的 JSON 输出。
type parseResult struct {
	Formula     string                          `json:"formula"`
	Mode        composition.Mode                `json:"mode"`
	Tokens      []contract.FormulaToken         `json:"tokens"`
	Composition []contract.ElementalComposition `json:"elemental_composition"`
}

func newParseCmd() *cobra.Command {
	var mass, asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <formula>",
		Short: "Parse a chemical formula and print its elemental composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := composition.ModeAtomic
			if mass {
				mode = composition.ModeMass
			}
			res, err := parseFormula(args[0], mode)
			if err != nil {
				return exitf(exitRuntime, "parse %q: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printParse(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&mass, "mass", false, "同时计算质量分数")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func parseFormula(s string, mode composition.Mode) (parseResult, error) {
	toks, err := formula.Tokenize(s)
	if err != nil {
		return parseResult{}, err
	}
	elements, counts, _ := formula.Parse(s)
	list, err := composition.Compute(mode, elements, counts)
	if err != nil {
		return parseResult{}, err
	}
	return parseResult{Formula: s, Mode: mode, Tokens: toks, Composition: list}, nil
}

func printParse(w io.Writer, res parseResult) error {
	parts := make([]string, len(res.Tokens))
	for i, t := range res.Tokens {
		parts[i] = t.Element + strconv.Itoa(t.Count)
	}
	fprintf(w, "formula: %s\ntokens:  %s\n", res.Formula, strings.Join(parts, " "))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fprintf(tw, "element\tatomic_fraction")
	if res.Mode == composition.ModeMass {
		fprintf(tw, "\tmass_fraction")
	}
	fprintf(tw, "\n")
	for _, c := range res.Composition {
		fprintf(tw, "%s\t%.6f", c.Element, c.AtomicFraction)
		if c.MassFraction != nil {
			fprintf(tw, "\t%.6f", *c.MassFraction)
		}
		fprintf(tw, "\n")
	}
	return tw.Flush()
}

// sectionRow: sections 子命令的一行。
type sectionRow struct {
	Package     string `json:"package"`
	Section     string `json:"section"`
	Qualified   string `json:"qualified"`
	Description string `json:"description,omitempty"`
}

func newSectionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List schema packages and their entry sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows []sectionRow
			for _, p := range schema.Packages() {
				for _, d := range p.Sections {
					rows = append(rows, sectionRow{Package: p.Name, Section: d.Name, Qualified: d.Qualified, Description: d.Description})
				}
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fprintf(tw, "package\tsection\tqualified\n")
			for _, r := range rows {
				fprintf(tw, "%s\t%s\t%s\n", r.Package, r.Section, r.Qualified)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func newMenusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menus [section]",
		Short: "Dump search menus (with search quantities) as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms := menu.All()
			if len(args) == 1 {
				if _, err := schema.Lookup(args[0]); err != nil {
					return exitf(exitRuntime, "menus: %w", err)
				}
				ms = menu.For(args[0])
			}
			out := make([]menu.Rendered, 0, len(ms))
			for _, m := range ms {
				r, err := menu.Render(schema.Default(), m)
				if err != nil {
					return exitf(exitRuntime, "menus: %s: %w", m.Section, err)
				}
				out = append(out, r)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
