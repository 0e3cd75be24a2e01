package rest

import (
	"net/http"
	"net/url"
	"strings"
)

// Link — гиперссылка на связанное действие.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Links — блок "_links" ответа.
type Links map[string]Link

// linkBuilder строит абсолютные ссылки от публичного адреса сервиса.
type linkBuilder struct {
	base string
}

func newLinkBuilder(publicURL string) linkBuilder {
	return linkBuilder{base: strings.TrimRight(publicURL, "/") + apiPrefix}
}

// to собирает ссылку из сегментов пути; сегменты экранируются.
func (b linkBuilder) to(method string, segments ...string) Link {
	var sb strings.Builder
	sb.WriteString(b.base)
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return Link{Href: sb.String(), Method: method}
}

func (b linkBuilder) get(segments ...string) Link    { return b.to(http.MethodGet, segments...) }
func (b linkBuilder) post(segments ...string) Link   { return b.to(http.MethodPost, segments...) }
func (b linkBuilder) put(segments ...string) Link    { return b.to(http.MethodPut, segments...) }
func (b linkBuilder) delete(segments ...string) Link { return b.to(http.MethodDelete, segments...) }
