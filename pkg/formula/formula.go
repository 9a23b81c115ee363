// Package formula 将化学式（如 "SiO2"、"Al2O3"）切分为有序的 (元素符号, 计数) 组。
//
// 解析器只做词法层面的切分：不校验元素是否存在于周期表，
// 不合并重复元素，不支持括号与水合物记号。
package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"fabschema/pkg/contract"
)

// ParseError 描述化学式的词法错误；errors.Is(err, contract.ErrMalformedFormula) 成立。
type ParseError struct {
	Formula string
	// Pos: 出错字节偏移（空串时为 0）。
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("formula %q: %s at offset %d", e.Formula, e.Msg, e.Pos)
}

func (e *ParseError) Unwrap() error { return contract.ErrMalformedFormula }

// Tokenize 按出现顺序返回全部组。
// 组 = 大写字母 + 可选一个小写字母 + 最长数字串；无数字时计数为 1，前导零按整数值解析。
func Tokenize(s string) ([]contract.FormulaToken, error) {
	if s == "" {
		return nil, &ParseError{Formula: s, Msg: "empty formula"}
	}
	toks := make([]contract.FormulaToken, 0, len(s)/2+1)
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isUpper(c):
		case isLower(c):
			return nil, &ParseError{Formula: s, Pos: i, Msg: fmt.Sprintf("lowercase %q without element symbol", c)}
		case isDigit(c):
			return nil, &ParseError{Formula: s, Pos: i, Msg: fmt.Sprintf("count %q without element symbol", c)}
		default:
			r, _ := utf8.DecodeRuneInString(s[i:])
			return nil, &ParseError{Formula: s, Pos: i, Msg: fmt.Sprintf("invalid character %q", r)}
		}
		start := i
		i++
		if i < len(s) && isLower(s[i]) {
			i++
		}
		sym := s[start:i]
		digits := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		n := 1
		if i > digits {
			v, err := strconv.Atoi(s[digits:i])
			if err != nil {
				return nil, &ParseError{Formula: s, Pos: digits, Msg: "count out of range"}
			}
			n = v
		}
		toks = append(toks, contract.FormulaToken{Element: sym, Count: n})
	}
	return toks, nil
}

// Parse 返回等长的元素序列与计数序列。
func Parse(s string) (elements []string, counts []int, err error) {
	toks, err := Tokenize(s)
	if err != nil {
		return nil, nil, err
	}
	elements = make([]string, len(toks))
	counts = make([]int, len(toks))
	for i, t := range toks {
		elements[i] = t.Element
		counts[i] = t.Count
	}
	return elements, counts, nil
}

// Format 将组还原为紧凑记法（计数 1 省略）。
func Format(toks []contract.FormulaToken) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Element)
		if t.Count != 1 {
			b.WriteString(strconv.Itoa(t.Count))
		}
	}
	return b.String()
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
