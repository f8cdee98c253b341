package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storelist/internal/model"
	"github.com/hitoshi/storelist/internal/store"
)

// maxStoreBodyBytes はストア作成・更新リクエストボディの上限。
const maxStoreBodyBytes = 1 << 20

// StoreServiceInterface はストアハンドラーが必要とするサービスインターフェース。
type StoreServiceInterface interface {
	List(ctx context.Context, by store.SortCriteria) ([]*model.Store, error)
	Get(ctx context.Context, id string) (*model.Store, error)
	Create(ctx context.Context, fields model.StoreFields) (*model.Store, error)
	Update(ctx context.Context, id string, fields model.StoreFields) (*model.Store, error)
	Delete(ctx context.Context, id string) error
}

// StoreHandler は店舗CRUDのHTTPハンドラー。
type StoreHandler struct {
	service StoreServiceInterface
}

// NewStoreHandler はStoreHandlerを生成する。
func NewStoreHandler(service StoreServiceInterface) *StoreHandler {
	return &StoreHandler{service: service}
}

// deleteResponse は削除成功時のレスポンス。
type deleteResponse struct {
	Message string `json:"message"`
}

// ListStores は全店舗をJSON配列で返す。
// GET /api/stores?sort=name|district
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	by, err := store.ParseSortCriteria(r.URL.Query().Get("sort"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	stores, err := h.service.List(r.Context(), by)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stores)
}

// CreateStore は店舗を追加し、トップページへリダイレクトする。
// POST /api/stores
func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeStoreFields(w, r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if _, err := h.service.Create(r.Context(), fields); err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UpdateStore は店舗の全列を置き換え、トップページへリダイレクトする。
// PUT /api/stores/{id}
func (h *StoreHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields, err := decodeStoreFields(w, r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if _, err := h.service.Update(r.Context(), id, fields); err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteStore は店舗を削除する。
// DELETE /api/stores/{id}
func (h *StoreHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Message: "Store deleted successfully"})
}

// decodeStoreFields はJSONまたはフォームのボディから店舗の列値を取り出す。
// application/jsonはJSONとして、それ以外はフォームとして解釈する。値の検証は行わない。
func decodeStoreFields(w http.ResponseWriter, r *http.Request) (model.StoreFields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStoreBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		// キーが省略された列はNULLとして保存する
		var fields model.StoreFields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return model.StoreFields{}, model.NewInvalidRequestError("malformed JSON body")
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.StoreFields{}, model.NewInvalidRequestError("body too large")
		}
		return model.StoreFields{}, model.NewInvalidRequestError("malformed form body")
	}

	return model.StoreFields{
		Name:         formValue(r, "name"),
		URL:          formValue(r, "url"),
		District:     formValue(r, "district"),
		PhoneNumber:  formValue(r, "phone_number"),
		OpeningHours: formValue(r, "opening_hours"),
		PriceRange:   formValue(r, "price_range"),
	}, nil
}

// formValue は送信されたフォーム項目の値を返す。項目自体がなければnil。
func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
