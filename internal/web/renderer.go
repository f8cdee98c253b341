// Package web はHTMLページのレンダリングと静的アセットの配信を提供する。
// テンプレートとアセットはバイナリに埋め込む。
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/hitoshi/storelist/internal/model"
)

// ページ名。テンプレートファイル名と一致する。
const (
	pageHome    = "home"
	pageAdd     = "add"
	pageEdit    = "edit"
	pageLogin   = "login"
	pageMessage = "message"
)

type homeData struct {
	// User はwindow.userに埋め込む値。未ログイン時はnilでJSのnullになる。
	User any
}

// storeFormData はフォームの入力値。NULL列は空文字列で表示する。
type storeFormData struct {
	ID           int64
	Name         string
	URL          string
	District     string
	PhoneNumber  string
	OpeningHours string
	PriceRange   string
}

type loginData struct {
	Error    string
	Username string
}

type messageData struct {
	Title   string
	Message string
}

// Renderer は埋め込みテンプレートからHTMLページを生成する。
// テンプレートは生成時に一度だけパースし、以降は並行に使用できる。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer はすべてのページテンプレートをパースしたRendererを生成する。
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, name := range []string{pageHome, pageAdd, pageEdit, pageLogin, pageMessage} {
		tmpl, err := template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/store_form.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Home はストア一覧のシェルページを出力する。一覧の描画はscript.jsが行う。
// usernameが空の場合は未ログインとして扱う。
func (r *Renderer) Home(w io.Writer, username string) error {
	data := homeData{}
	if username != "" {
		data.User = username
	}
	return r.render(w, pageHome, data)
}

// AddForm は店舗追加フォームを出力する。
func (r *Renderer) AddForm(w io.Writer) error {
	return r.render(w, pageAdd, storeFormData{})
}

// EditForm は既存の値を埋めた店舗編集フォームを出力する。
func (r *Renderer) EditForm(w io.Writer, store *model.Store) error {
	return r.render(w, pageEdit, storeFormData{
		ID:           store.ID,
		Name:         store.Name,
		URL:          deref(store.URL),
		District:     deref(store.District),
		PhoneNumber:  store.PhoneNumber,
		OpeningHours: store.OpeningHours,
		PriceRange:   store.PriceRange,
	})
}

// Login はログインフォームを出力する。errMsgが空でなければエラーとして表示する。
func (r *Renderer) Login(w io.Writer, errMsg, username string) error {
	return r.render(w, pageLogin, loginData{Error: errMsg, Username: username})
}

// Message はタイトルと本文だけの簡易ページを出力する。
func (r *Renderer) Message(w io.Writer, title, message string) error {
	return r.render(w, pageMessage, messageData{Title: title, Message: message})
}

// render はバッファに描画してから書き出す。
// 描画途中で失敗した場合に不完全なHTMLを返さない。
func (r *Renderer) render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler はstyles.cssとscript.jsを配信するハンドラーを返す。
// リクエストパスのファイル名をstatic/以下から探す。
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// 埋め込みパスはコンパイル時に固定されている
		panic(err)
	}
	return http.FileServerFS(sub)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
