package store

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hitoshi/storelist/internal/model"
)

// SortCriteria は店舗一覧の並び替え条件。
type SortCriteria string

const (
	// SortNone はデータベースの返した順序のまま返すことを示す。
	SortNone SortCriteria = ""
	// SortByName は店舗名で並び替える。
	SortByName SortCriteria = "name"
	// SortByDistrict は地区で並び替える。地区のない店舗は末尾に置く。
	SortByDistrict SortCriteria = "district"
)

// ParseSortCriteria はクエリパラメータの値をSortCriteriaに変換する。
func ParseSortCriteria(s string) (SortCriteria, error) {
	switch SortCriteria(s) {
	case SortNone, SortByName, SortByDistrict:
		return SortCriteria(s), nil
	default:
		return SortNone, model.NewInvalidSortError(s)
	}
}

// Sorter はロケールに従った大文字小文字を区別しない比較で店舗を並び替える。
// クライアントスクリプトの localeCompare による並び替えと同じ順序になる。
type Sorter struct {
	tag language.Tag
}

// NewSorter は指定ロケールのSorterを生成する。
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// Sort はstoresをその場で安定ソートする。SortNoneの場合は何もしない。
func (s *Sorter) Sort(stores []*model.Store, by SortCriteria) {
	if by == SortNone {
		return
	}

	// collate.Collatorは並行利用できないため呼び出しごとに生成する
	c := collate.New(s.tag, collate.IgnoreCase)

	switch by {
	case SortByName:
		slices.SortStableFunc(stores, func(a, b *model.Store) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortByDistrict:
		slices.SortStableFunc(stores, func(a, b *model.Store) int {
			da, db := deref(a.District), deref(b.District)
			switch {
			case da == "" && db != "":
				return 1
			case da != "" && db == "":
				return -1
			}
			return c.CompareString(da, db)
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
