package graphqlsvc

import (
	"github.com/graphql-go/handler"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
)

// NewHandler возвращает HTTP-обработчик GraphQL с включённым GraphiQL.
func NewHandler(cat *catalog.Catalog, logger *log.Entry) (*handler.Handler, error) {
	schema, err := NewSchema(cat, logger)
	if err != nil {
		return nil, err
	}
	return handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	}), nil
}
