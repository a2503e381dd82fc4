package usecase

import (
	"stockaivo/internal/feature/prices/domain/entity"
)

// Merge は複数の断片を1本の正規化された Series に統合します。
// 同一キーの衝突は後から渡された断片（より新しい取得）が勝ちます。
// 冪等であり、断片の到着順は最終内容に影響しません（同一キーの
// 値が断片間で一致する限り）。
func Merge(fragments ...entity.Series) entity.Series {
	total := 0
	for _, f := range fragments {
		total += len(f)
	}
	combined := make(entity.Series, 0, total)
	for _, f := range fragments {
		combined = append(combined, f...)
	}
	return combined.Normalize()
}
