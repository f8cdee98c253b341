package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storelist/internal/middleware"
	"github.com/hitoshi/storelist/internal/model"
)

// PageRenderer はHTMLページの描画インターフェース。web.Rendererが実装する。
type PageRenderer interface {
	Home(w io.Writer, username string) error
	AddForm(w io.Writer) error
	EditForm(w io.Writer, store *model.Store) error
	Login(w io.Writer, errMsg, username string) error
	Message(w io.Writer, title, message string) error
}

// StoreGetter は編集ページが既存の値を取得するためのインターフェース。
type StoreGetter interface {
	Get(ctx context.Context, id string) (*model.Store, error)
}

// PageHandler はHTMLページのHTTPハンドラー。
type PageHandler struct {
	renderer PageRenderer
	stores   StoreGetter
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(renderer PageRenderer, stores StoreGetter) *PageHandler {
	return &PageHandler{renderer: renderer, stores: stores}
}

// Home はトップページのシェルを返す。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.UsernameFromContext(r.Context())
	writeHTML(w, r, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Home(w, username)
	})
}

// AddForm は店舗追加フォームを返す。
// GET /add
func (h *PageHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusOK, h.renderer.AddForm)
}

// EditForm は既存の値を埋めた店舗編集フォームを返す。
// GET /edit/{id}
func (h *PageHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	store, err := h.stores.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeStoreNotFound {
			writeHTML(w, r, http.StatusNotFound, func(w io.Writer) error {
				return h.renderer.Message(w, "Store not found", apiErr.Message)
			})
			return
		}

		slog.Error("failed to load store for edit",
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeHTML(w, r, http.StatusInternalServerError, func(w io.Writer) error {
			return h.renderer.Message(w, "Error", "Error fetching store data.")
		})
		return
	}

	writeHTML(w, r, http.StatusOK, func(w io.Writer) error {
		return h.renderer.EditForm(w, store)
	})
}

// NotFound は未定義ルートに対する404ページを返す。
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusNotFound, func(w io.Writer) error {
		return h.renderer.Message(w, "Not found", "The requested page does not exist.")
	})
}

// writeHTML はrenderの出力をHTMLとして書き込む。
// 描画に失敗した場合はヘッダー送信前に500へ切り替える。
func writeHTML(w http.ResponseWriter, r *http.Request, statusCode int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	buf.WriteTo(w)
}
