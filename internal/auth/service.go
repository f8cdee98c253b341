// Package auth はログイン認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/hitoshi/storelist/internal/metrics"
	"github.com/hitoshi/storelist/internal/model"
	"github.com/hitoshi/storelist/internal/session"
)

// Credentials はログインを許可する管理者アカウント。
// 起動時に設定から読み込み、ソースコードには埋め込まない。
type Credentials struct {
	Username string
	Password string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	credentials Credentials
	sessions    session.Store
	metrics     metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(credentials Credentials, sessions session.Store, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		credentials: credentials,
		sessions:    sessions,
		metrics:     collector,
	}
}

// Login は資格情報を照合し、一致すればセッションを発行する。
// 不一致の場合はmodel.APIError（INVALID_CREDENTIALS）を返す。ロックアウトやバックオフは行わない。
func (s *Service) Login(ctx context.Context, username, password string) (*model.Session, error) {
	if !s.matches(username, password) {
		s.metrics.RecordLogin(metrics.ResultRejected)
		slog.Warn("login rejected", slog.String("username", username))
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.sessions.Create(ctx, username)
	if err != nil {
		s.metrics.RecordLogin(metrics.ResultError)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	slog.Info("user logged in", slog.String("username", username))

	return &model.Session{Token: token, Username: username}, nil
}

// Logout はセッションを破棄する。存在しないトークンでもエラーにならない。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// CurrentUser はトークンに紐付くユーザー名を返す。
// セッションが存在しない場合はfound=falseを返す。
func (s *Service) CurrentUser(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	return s.sessions.Lookup(ctx, token)
}

// matches はユーザー名とパスワードを定数時間で比較する。
func (s *Service) matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.credentials.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.credentials.Password))
	return userOK&passOK == 1
}
