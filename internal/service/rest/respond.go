package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// errorBody — JSON-тело клиентской ошибки.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writePlain отвечает текстом; так отдаются все ответы 500.
func writePlain(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// failure описывает, как сообщить об ошибке операции над видом записей.
type failure struct {
	schema domain.Schema
	// action — глагол для текста 500 ("loading", "adding", ...).
	action string
	// plural — в тексте 500 используется множественное имя ("Error loading shops.").
	plural bool
}

func (f failure) internalText() string {
	name := f.schema.Singular
	if f.plural {
		name = f.schema.Collection
	}
	return "Error " + f.action + " " + name + "."
}

// writeError переводит ошибку сервиса коллекции в HTTP-ответ.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Entry, f failure, err error) {
	entry := logger.WithError(err).WithFields(log.Fields{
		"collection": f.schema.Collection,
		"request_id": middleware.GetReqID(r.Context()),
	})

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: f.schema.Title + " not found"})
	case errors.Is(err, domain.ErrDuplicateIdentity):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: f.schema.Title + " with this ID already exists"})
	case errors.Is(err, domain.ErrMissingRequired):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing required fields", Details: err.Error()})
	case errors.Is(err, domain.ErrValidationFailed), errors.Is(err, domain.ErrInvalidOperand):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: clientMessage(err)})
	default:
		entry.Error("request failed")
		writePlain(w, http.StatusInternalServerError, f.internalText())
		return
	}
	entry.Debug("request rejected")
}

// clientMessage делает из текста ошибки короткую фразу для ответа 400.
func clientMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return http.StatusText(http.StatusBadRequest)
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
