// Package store は店舗ディレクトリのドメインサービスを提供する。
package store

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/hitoshi/storelist/internal/metrics"
	"github.com/hitoshi/storelist/internal/model"
	"github.com/hitoshi/storelist/internal/repository"
)

// Service は店舗のCRUDを提供するサービス。
// 該当行がない場合はmodel.APIError（STORE_NOT_FOUND）を返し、
// データアクセスエラーはそのまま呼び出し側に返す。リトライは行わない。
type Service struct {
	repo    repository.StoreRepository
	sorter  *Sorter
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(repo repository.StoreRepository, sorter *Sorter, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:    repo,
		sorter:  sorter,
		metrics: collector,
	}
}

// List は全店舗を返す。byが指定された場合は取得後にメモリ上で並び替える。
func (s *Service) List(ctx context.Context, by SortCriteria) ([]*model.Store, error) {
	start := time.Now()
	stores, err := s.repo.List(ctx)
	if err != nil {
		s.record("list", metrics.ResultError, start)
		return nil, err
	}
	s.record("list", metrics.ResultSuccess, start)

	if s.sorter != nil {
		s.sorter.Sort(stores, by)
	}
	return stores, nil
}

// Get は指定IDの店舗を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Store, error) {
	storeID, ok := parseStoreID(id)
	if !ok {
		return nil, model.NewStoreNotFoundError(id)
	}

	start := time.Now()
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		s.record("get", metrics.ResultError, start)
		return nil, err
	}
	if store == nil {
		s.record("get", metrics.ResultNotFound, start)
		return nil, model.NewStoreNotFoundError(id)
	}
	s.record("get", metrics.ResultSuccess, start)
	return store, nil
}

// Create は店舗を作成する。
func (s *Service) Create(ctx context.Context, fields model.StoreFields) (*model.Store, error) {
	start := time.Now()
	store, err := s.repo.Create(ctx, fields)
	if err != nil {
		s.record("create", metrics.ResultError, start)
		return nil, err
	}
	s.record("create", metrics.ResultSuccess, start)

	slog.Info("store created",
		slog.Int64("store_id", store.ID),
		slog.String("name", store.Name),
	)
	return store, nil
}

// Update は指定IDの店舗を更新する。
func (s *Service) Update(ctx context.Context, id string, fields model.StoreFields) (*model.Store, error) {
	storeID, ok := parseStoreID(id)
	if !ok {
		return nil, model.NewStoreNotFoundError(id)
	}

	start := time.Now()
	store, err := s.repo.Update(ctx, storeID, fields)
	if err != nil {
		s.record("update", metrics.ResultError, start)
		return nil, err
	}
	if store == nil {
		s.record("update", metrics.ResultNotFound, start)
		return nil, model.NewStoreNotFoundError(id)
	}
	s.record("update", metrics.ResultSuccess, start)

	slog.Info("store updated", slog.Int64("store_id", store.ID))
	return store, nil
}

// Delete は指定IDの店舗を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	storeID, ok := parseStoreID(id)
	if !ok {
		return model.NewStoreNotFoundError(id)
	}

	start := time.Now()
	deleted, err := s.repo.Delete(ctx, storeID)
	if err != nil {
		s.record("delete", metrics.ResultError, start)
		return err
	}
	if !deleted {
		s.record("delete", metrics.ResultNotFound, start)
		return model.NewStoreNotFoundError(id)
	}
	s.record("delete", metrics.ResultSuccess, start)

	slog.Info("store deleted", slog.Int64("store_id", storeID))
	return nil
}

func (s *Service) record(op, result string, start time.Time) {
	s.metrics.RecordStoreOperation(op, result, time.Since(start))
}

// parseStoreID はパスパラメータのIDを数値に変換する。
// 数値でないIDは存在しない行として扱う。
func parseStoreID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
