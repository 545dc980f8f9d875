package payment

import (
	"strings"

	"github.com/hitoshi/paylink/internal/model"
)

// ParseCSV はバッチ支払いのCSVテキストを行リストへ変換する。
// 1行を「識別子,金額」として読み、空行と2フィールドに満たない行、
// 識別子か金額が空の行は黙って読み飛ばす。行の順序は保持する。
func ParseCSV(text string) []model.BatchRow {
	var rows []model.BatchRow

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}

		identifier := strings.TrimSpace(fields[0])
		amount := strings.TrimSpace(fields[1])
		if identifier == "" || amount == "" {
			continue
		}

		rows = append(rows, model.BatchRow{
			Identifier: identifier,
			Amount:     amount,
		})
	}
	return rows
}
