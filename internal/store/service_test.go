package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hitoshi/storelist/internal/model"
)

// --- モック定義 ---

type mockStoreRepo struct {
	listFn     func(ctx context.Context) ([]*model.Store, error)
	findByIDFn func(ctx context.Context, id int64) (*model.Store, error)
	createFn   func(ctx context.Context, fields model.StoreFields) (*model.Store, error)
	updateFn   func(ctx context.Context, id int64, fields model.StoreFields) (*model.Store, error)
	deleteFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockStoreRepo) List(ctx context.Context) ([]*model.Store, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockStoreRepo) FindByID(ctx context.Context, id int64) (*model.Store, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockStoreRepo) Create(ctx context.Context, fields model.StoreFields) (*model.Store, error) {
	if m.createFn != nil {
		return m.createFn(ctx, fields)
	}
	return nil, nil
}

func (m *mockStoreRepo) Update(ctx context.Context, id int64, fields model.StoreFields) (*model.Store, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, nil
}

func (m *mockStoreRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockStoreRepo) Truncate(ctx context.Context) error { return nil }

type recordedOp struct {
	operation string
	result    string
}

type mockCollector struct {
	ops []recordedOp
}

func (m *mockCollector) RecordStoreOperation(operation, result string, _ time.Duration) {
	m.ops = append(m.ops, recordedOp{operation, result})
}
func (m *mockCollector) RecordLogin(string)   {}
func (m *mockCollector) RecordHTTPStatus(int) {}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, model.ErrCodeStoreNotFound, apiErr.Code)
}

// --- テスト ---

func TestService_List_ReturnsRepositoryOrderWithoutSort(t *testing.T) {
	repo := &mockStoreRepo{
		listFn: func(ctx context.Context) ([]*model.Store, error) {
			return []*model.Store{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}}, nil
		},
	}
	svc := NewService(repo, NewSorter(language.Swedish), nil)

	stores, err := svc.List(context.Background(), SortNone)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(stores))
}

func TestService_List_SortsByName(t *testing.T) {
	repo := &mockStoreRepo{
		listFn: func(ctx context.Context) ([]*model.Store, error) {
			return []*model.Store{{ID: 1, Name: "b"}, {ID: 2, Name: "A"}}, nil
		},
	}
	svc := NewService(repo, NewSorter(language.Swedish), nil)

	stores, err := svc.List(context.Background(), SortByName)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(stores))
}

func TestService_List_RepositoryError(t *testing.T) {
	collector := &mockCollector{}
	repo := &mockStoreRepo{
		listFn: func(ctx context.Context) ([]*model.Store, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo, nil, collector)

	_, err := svc.List(context.Background(), SortNone)
	require.Error(t, err)
	assert.Equal(t, []recordedOp{{"list", "error"}}, collector.ops)
}

func TestService_Get_Found(t *testing.T) {
	repo := &mockStoreRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Store, error) {
			assert.Equal(t, int64(7), id)
			return &model.Store{ID: 7, Name: "Seven"}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	store, err := svc.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Seven", store.Name)
}

func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockStoreRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "7")
	assertNotFound(t, err)
}

// 数値でないIDはリポジトリを呼ばずにnot foundとなる。
func TestService_InvalidIDIsNotFound(t *testing.T) {
	repo := &mockStoreRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Store, error) {
			t.Fatal("repository should not be called")
			return nil, nil
		},
		updateFn: func(ctx context.Context, id int64, fields model.StoreFields) (*model.Store, error) {
			t.Fatal("repository should not be called")
			return nil, nil
		},
		deleteFn: func(ctx context.Context, id int64) (bool, error) {
			t.Fatal("repository should not be called")
			return false, nil
		},
	}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for _, id := range []string{"abc", "", "-1", "0", "1.5"} {
		_, err := svc.Get(ctx, id)
		assertNotFound(t, err)

		_, err = svc.Update(ctx, id, model.StoreFields{})
		assertNotFound(t, err)

		assertNotFound(t, svc.Delete(ctx, id))
	}
}

func TestService_Create_PassesFieldsThrough(t *testing.T) {
	name, url := "Nya Butiken", ""
	collector := &mockCollector{}
	repo := &mockStoreRepo{
		createFn: func(ctx context.Context, fields model.StoreFields) (*model.Store, error) {
			require.NotNil(t, fields.URL)
			assert.Equal(t, "", *fields.URL)
			return &model.Store{ID: 10, Name: *fields.Name, URL: fields.URL}, nil
		},
	}
	svc := NewService(repo, nil, collector)

	store, err := svc.Create(context.Background(), model.StoreFields{Name: &name, URL: &url})
	require.NoError(t, err)
	assert.Equal(t, int64(10), store.ID)
	assert.Equal(t, []recordedOp{{"create", "success"}}, collector.ops)
}

func TestService_Update_NotFound(t *testing.T) {
	collector := &mockCollector{}
	svc := NewService(&mockStoreRepo{}, nil, collector)

	_, err := svc.Update(context.Background(), "9999", model.StoreFields{})
	assertNotFound(t, err)
	assert.Equal(t, []recordedOp{{"update", "not_found"}}, collector.ops)
}

func TestService_Update_Success(t *testing.T) {
	repo := &mockStoreRepo{
		updateFn: func(ctx context.Context, id int64, fields model.StoreFields) (*model.Store, error) {
			return &model.Store{ID: id, Name: *fields.Name}, nil
		},
	}
	svc := NewService(repo, nil, nil)
	name := "Renamed"

	store, err := svc.Update(context.Background(), "3", model.StoreFields{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, int64(3), store.ID)
	assert.Equal(t, "Renamed", store.Name)
}

func TestService_Delete(t *testing.T) {
	deleted := map[int64]bool{}
	repo := &mockStoreRepo{
		deleteFn: func(ctx context.Context, id int64) (bool, error) {
			if id != 5 || deleted[id] {
				return false, nil
			}
			deleted[id] = true
			return true, nil
		},
	}
	collector := &mockCollector{}
	svc := NewService(repo, nil, collector)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "5"))
	assertNotFound(t, svc.Delete(ctx, "5"))

	assert.Equal(t, []recordedOp{{"delete", "success"}, {"delete", "not_found"}}, collector.ops)
}

func TestService_Delete_RepositoryError(t *testing.T) {
	repo := &mockStoreRepo{
		deleteFn: func(ctx context.Context, id int64) (bool, error) {
			return false, errors.New("boom")
		},
	}
	svc := NewService(repo, nil, nil)

	err := svc.Delete(context.Background(), "5")
	require.Error(t, err)
	var apiErr *model.APIError
	assert.False(t, errors.As(err, &apiErr), "data access errors must not be mapped to APIError")
}

func ids(stores []*model.Store) []int64 {
	out := make([]int64, len(stores))
	for i, s := range stores {
		out[i] = s.ID
	}
	return out
}
