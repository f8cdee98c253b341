// Package importer はJSONファイルから店舗データを一括投入する。
// 既存の店舗はすべて削除され、電話番号・営業時間・価格帯はランダムに生成される。
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/hitoshi/storelist/internal/model"
)

// priceRanges は生成する価格帯の候補。
var priceRanges = []string{"$", "$$", "$$$"}

// Entry はインポートファイルの1要素。
type Entry struct {
	Name     string  `json:"name"`
	URL      *string `json:"url"`
	District *string `json:"district"`
}

// StoreWriter はインポートに必要なリポジトリ操作。
// repository.StoreRepositoryの部分集合として定義する。
type StoreWriter interface {
	Truncate(ctx context.Context) error
	Create(ctx context.Context, fields model.StoreFields) (*model.Store, error)
}

// Result はインポート結果の集計。
type Result struct {
	Total    int
	Inserted int
	Failed   int
}

// Importer は店舗データの一括投入を行う。
type Importer struct {
	repo StoreWriter
	rng  *rand.Rand
}

// New はImporterを生成する。rngがnilの場合は実行ごとに異なる乱数列を使う。
func New(repo StoreWriter, rng *rand.Rand) *Importer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Importer{repo: repo, rng: rng}
}

// ImportFile はpathのJSON配列を読み込んでインポートする。
// ファイルが読めない場合はテーブルを変更しない。
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return im.Import(ctx, entries)
}

// Decode はインポートファイルのJSON配列を読み込む。
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode stores: %w", err)
	}
	return entries, nil
}

// Import はテーブルを空にしてからentriesを順に挿入する。
// 個々の挿入失敗はログに記録してスキップし、残りの処理を続ける。
func (im *Importer) Import(ctx context.Context, entries []Entry) (Result, error) {
	slog.Info("clearing existing stores")
	if err := im.repo.Truncate(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to clear stores: %w", err)
	}

	res := Result{Total: len(entries)}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		created, err := im.repo.Create(ctx, im.fields(e))
		if err != nil {
			res.Failed++
			slog.Error("failed to insert store",
				slog.String("name", e.Name),
				slog.String("error", err.Error()),
			)
			continue
		}

		res.Inserted++
		slog.Debug("inserted store",
			slog.Int64("store_id", created.ID),
			slog.String("name", created.Name),
		)
	}

	slog.Info("store import finished",
		slog.Int("total", res.Total),
		slog.Int("inserted", res.Inserted),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

// fields はエントリに生成値を補って挿入する列値を組み立てる。
func (im *Importer) fields(e Entry) model.StoreFields {
	name := e.Name
	phone := im.PhoneNumber()
	hours := im.OpeningHours()
	price := im.PriceRange()

	return model.StoreFields{
		Name:         &name,
		URL:          nonBlank(e.URL),
		District:     nonBlank(e.District),
		PhoneNumber:  &phone,
		OpeningHours: &hours,
		PriceRange:   &price,
	}
}

// PhoneNumber は "+46 " に続く8桁（10000000〜99999999）の電話番号を生成する。
func (im *Importer) PhoneNumber() string {
	return fmt.Sprintf("+46 %d", 10000000+im.rng.IntN(90000000))
}

// OpeningHours は12時間表記の営業時間を生成する。
// 開店は午前8〜10時、閉店は開店の8〜10時間後。
func (im *Importer) OpeningHours() string {
	open := 8 + im.rng.IntN(3)
	closing := open + 8 + im.rng.IntN(3)
	return fmt.Sprintf("%d:00 AM - %d:00 PM", open, closing-12)
}

// PriceRange は "$"、"$$"、"$$$" のいずれかを返す。
func (im *Importer) PriceRange() string {
	return priceRanges[im.rng.IntN(len(priceRanges))]
}

// nonBlank は空白のみの文字列をNULL（nil）に正規化する。値自体はトリムしない。
func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
