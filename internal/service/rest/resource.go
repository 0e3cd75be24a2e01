package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
)

// collectionService — операции сервиса коллекции, которые нужны REST-слою.
type collectionService[R domain.Record] interface {
	Schema() domain.Schema
	List(ctx context.Context, q domain.ListQuery) ([]R, error)
	Get(ctx context.Context, id string) (R, error)
	Create(ctx context.Context, in domain.Input) (R, error)
	Replace(ctx context.Context, id string, in domain.Input) (R, error)
	Patch(ctx context.Context, id string, in domain.Input) (R, error)
	Delete(ctx context.Context, id string) (R, error)
}

// resource обслуживает шесть маршрутов одного вида записей.
type resource[R domain.Record] struct {
	svc    collectionService[R]
	schema domain.Schema
	body   *InputDecoder
	links  linkBuilder
	logger *log.Entry
}

func newResource[R domain.Record](svc collectionService[R], links linkBuilder, logger *log.Entry) (*resource[R], error) {
	schema := svc.Schema()
	body, err := NewInputDecoder(schema)
	if err != nil {
		return nil, err
	}
	return &resource[R]{
		svc:    svc,
		schema: schema,
		body:   body,
		links:  links,
		logger: logger.WithField("resource", schema.Collection),
	}, nil
}

// mount регистрирует маршруты /<collection> и /<collection>/{id}.
func (res *resource[R]) mount(r chi.Router) {
	base := "/" + res.schema.Collection
	r.Get(base, res.list)
	r.Post(base, res.create)
	r.Get(base+"/{id}", res.get)
	r.Put(base+"/{id}", res.replace)
	r.Patch(base+"/{id}", res.patch)
	r.Delete(base+"/{id}", res.delete)
}

func (res *resource[R]) list(w http.ResponseWriter, r *http.Request) {
	fail := failure{schema: res.schema, action: "loading", plural: true}
	q, err := listQueryFromRequest(r)
	if err != nil {
		writeError(w, r, res.logger, fail, err)
		return
	}
	records, err := res.svc.List(r.Context(), q)
	if err != nil {
		writeError(w, r, res.logger, fail, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		res.schema.Collection: recordMaps(records),
		"_links": Links{
			"self":                   res.links.get(res.schema.Collection),
			"add" + res.schema.Title: res.links.post(res.schema.Collection),
		},
	})
}

func (res *resource[R]) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := res.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, res.logger, failure{schema: res.schema, action: "loading"}, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		res.schema.Singular: domain.AsMap(rec),
		"_links":            res.itemLinks(res.schema.Collection, id),
	})
}

func (res *resource[R]) create(w http.ResponseWriter, r *http.Request) {
	fail := failure{schema: res.schema, action: "adding"}
	in, err := res.body.Decode(r.Context(), r)
	if err != nil {
		writeError(w, r, res.logger, fail, err)
		return
	}
	rec, err := res.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, res.logger, fail, err)
		return
	}
	id := rec.Identity().String()
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":           res.schema.Title + " added successfully",
		res.schema.Singular: domain.AsMap(rec),
		"_links":            res.changedLinks(id),
	})
}

func (res *resource[R]) replace(w http.ResponseWriter, r *http.Request) {
	res.update(w, r, res.svc.Replace)
}

func (res *resource[R]) patch(w http.ResponseWriter, r *http.Request) {
	res.update(w, r, res.svc.Patch)
}

func (res *resource[R]) update(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, domain.Input) (R, error)) {
	fail := failure{schema: res.schema, action: "updating"}
	id := chi.URLParam(r, "id")
	in, err := res.body.Decode(r.Context(), r)
	if err != nil {
		writeError(w, r, res.logger, fail, err)
		return
	}
	rec, err := apply(r.Context(), id, in)
	if err != nil {
		writeError(w, r, res.logger, fail, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           res.schema.Title + " updated successfully",
		res.schema.Singular: domain.AsMap(rec),
		"_links":            res.changedLinks(id),
	})
}

func (res *resource[R]) delete(w http.ResponseWriter, r *http.Request) {
	if _, err := res.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, res.logger, failure{schema: res.schema, action: "deleting"}, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": res.schema.Title + " deleted successfully",
		"_links": Links{
			"all" + res.schema.PluralTitle: res.links.get(res.schema.Collection),
			"add" + res.schema.Title:       res.links.post(res.schema.Collection),
		},
	})
}

// itemLinks — ссылки ответа на чтение одной записи по указанному пути.
func (res *resource[R]) itemLinks(segments ...string) Links {
	return Links{
		"self":                      res.links.get(segments...),
		"update" + res.schema.Title: res.links.put(segments...),
		"delete" + res.schema.Title: res.links.delete(segments...),
	}
}

// changedLinks — ссылки ответа на изменение записи.
func (res *resource[R]) changedLinks(id string) Links {
	return Links{
		"self":                         res.links.get(res.schema.Collection, id),
		"all" + res.schema.PluralTitle: res.links.get(res.schema.Collection),
	}
}

func recordMaps[R domain.Record](records []R) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.AsMap(rec))
	}
	return out
}

func listQueryFromRequest(r *http.Request) (domain.ListQuery, error) {
	values := r.URL.Query()
	return query.Params{
		Field:         values.Get("field"),
		Operator:      values.Get("operator"),
		Value:         values.Get("value"),
		SortField:     values.Get("sortField"),
		SortDirection: values.Get("sortDirection"),
		Page:          values.Get("page"),
		Limit:         values.Get("limit"),
	}.ListQuery()
}
