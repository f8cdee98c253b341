package model

// Store は店舗ディレクトリの1行を表す。
// URLとDistrictはNULL可能なためポインタで保持し、JSONではnullとして出力する。
type Store struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	URL          *string `json:"url"`
	District     *string `json:"district"`
	PhoneNumber  string  `json:"phone_number"`
	OpeningHours string  `json:"opening_hours"`
	PriceRange   string  `json:"price_range"`
}

// StoreFields は挿入・更新時に書き込む6カラムを表す。
// 値の検証は行わず、クライアントから受け取ったまま保存する。
// 未指定のフィールドはnilとなりNULLとして書き込まれる（nameはNOT NULL制約で拒否される）。
type StoreFields struct {
	Name         *string `json:"name"`
	URL          *string `json:"url"`
	District     *string `json:"district"`
	PhoneNumber  *string `json:"phone_number"`
	OpeningHours *string `json:"opening_hours"`
	PriceRange   *string `json:"price_range"`
}

// Session はログインセッションを表す。
// トークンはCookieに保存され、セッションストアのキーとなる。
type Session struct {
	Token    string
	Username string
}
