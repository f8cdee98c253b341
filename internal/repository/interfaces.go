// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/storelist/internal/model"
)

// StoreRepository は店舗データの永続化インターフェース。
// キャッシュは持たず、すべての読み取りはデータベースに問い合わせる。
type StoreRepository interface {
	// List は全店舗を取得する。並び順はデータベースのデフォルトに従う。
	List(ctx context.Context) ([]*model.Store, error)

	// FindByID は指定IDの店舗を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Store, error)

	// Create は店舗を作成し、採番済みのIDを含む行を返す。
	Create(ctx context.Context, fields model.StoreFields) (*model.Store, error)

	// Update は指定IDの店舗の6カラムをすべて置き換える。
	// 該当行がない場合はnilを返す。
	Update(ctx context.Context, id int64, fields model.StoreFields) (*model.Store, error)

	// Delete は指定IDの店舗を削除する。該当行がない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)

	// Truncate は全店舗を削除しIDの採番をリセットする。シードデータ投入専用。
	Truncate(ctx context.Context) error
}
