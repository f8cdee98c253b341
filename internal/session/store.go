// Package session はログインセッション（トークン → ユーザー名）の保存先を提供する。
//
// Webレイヤーは Store インターフェースのみに依存し、実装はメモリまたはRedisを選択できる。
// セッションに有効期限はなく、明示的なログアウトかストアの消失（プロセス再起動など）まで有効。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes はセッショントークンのエントロピー（バイト数）。hex表現では64文字になる。
const TokenBytes = 32

// Store はセッションの作成・検索・破棄を行うインターフェース。
// 実装は並行アクセスに対して安全でなければならない。
type Store interface {
	// Create は新しいトークンを生成してユーザー名と紐付け、トークンを返す。
	Create(ctx context.Context, username string) (string, error)
	// Lookup はトークンに紐付くユーザー名を返す。存在しない場合はfound=falseを返す。
	Lookup(ctx context.Context, token string) (username string, found bool, err error)
	// Destroy はトークンを削除する。存在しないトークンの削除はエラーにならない。
	Destroy(ctx context.Context, token string) error
}

// NewToken は暗号論的に安全なランダムトークンを生成する。
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
