package composition

import (
	"strings"

	"fabschema/pkg/contract"
	"fabschema/pkg/formula"
)

// Apply 是所有携带化学式记录共用的归一化入口。
//
//   - 解析前先去除化学式首尾空白，故 " SiO2\n" 在此可接受，而 formula.Parse 会拒绝同一字符串；
//   - 化学式去除首尾空白后为空：不做任何修改，返回 nil；
//   - 解析失败、空组成、未知元素：返回错误，记录保持原值；
//   - 成功：整体替换记录的组成列表。
func Apply(rec contract.ChemicalRecord, mode Mode) error {
	f := strings.TrimSpace(rec.ChemicalFormula())
	if f == "" {
		return nil
	}
	els, cnts, err := formula.Parse(f)
	if err != nil {
		return err
	}
	list, err := Compute(mode, els, cnts)
	if err != nil {
		return err
	}
	rec.SetElementalComposition(list)
	return nil
}
