// Package graphqlsvc — GraphQL-эндпоинт каталога: запросы shops/costumes/offers
// и мутации add/update/delete поверх тех же сервисов коллекций, что и REST.
package graphqlsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
)

// collectionService — операции коллекции, которые использует GraphQL-слой.
type collectionService[R domain.Record] interface {
	Schema() domain.Schema
	List(ctx context.Context, q domain.ListQuery) ([]R, error)
	Get(ctx context.Context, id string) (R, error)
	Create(ctx context.Context, in domain.Input) (R, error)
	Patch(ctx context.Context, id string, in domain.Input) (R, error)
	Delete(ctx context.Context, id string) (R, error)
}

// typeShape задаёт обязательность полей объектного и входного типа вида.
type typeShape struct {
	// required — поля объекта, которые никогда не null.
	required []string
	// inputRequired — обязательные поля входного типа.
	inputRequired []string
}

var (
	shopShape = typeShape{
		required:      []string{"SHOP_ID", "SHOP_NAME", "CITY", "ADDRESS", "PHONE"},
		inputRequired: []string{"SHOP_NAME", "CITY", "ADDRESS", "PHONE"},
	}
	costumeShape = typeShape{
		required:      []string{"COSTUME_ID", "COSTUME_NAME"},
		inputRequired: []string{"COSTUME_NAME"},
	}
	offerShape = typeShape{
		required:      []string{"OFFER_ID", "TITLE"},
		inputRequired: []string{"SHOP_ID", "TITLE"},
	}
)

var filterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "FilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"field":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"operator": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"value":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

// NewSchema собирает схему GraphQL для каталога.
func NewSchema(cat *catalog.Catalog, logger *log.Entry) (graphql.Schema, error) {
	if logger == nil {
		logger = log.WithField("component", "graphql")
	}
	queries := graphql.Fields{}
	mutations := graphql.Fields{}

	bindKind[*domain.Shop](queries, mutations, cat.Shops, shopShape, logger)
	bindKind[*domain.Costume](queries, mutations, cat.Costumes, costumeShape, logger)
	bindKind[*domain.Offer](queries, mutations, cat.Offers, offerShape, logger)

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "RootQueryType", Fields: queries}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations}),
	})
}

// bindKind добавляет запросы и мутации одного вида записей.
func bindKind[R domain.Record](queries, mutations graphql.Fields, svc collectionService[R], shape typeShape, logger *log.Entry) {
	s := svc.Schema()
	b := &binding[R]{svc: svc, schema: s, logger: logger.WithField("collection", s.Collection)}

	object := graphql.NewObject(graphql.ObjectConfig{Name: s.Title, Fields: objectFields(s, shape.required)})
	input := graphql.NewInputObject(graphql.InputObjectConfig{Name: s.Title + "Input", Fields: inputFields(s, shape.inputRequired)})
	idArg := graphql.FieldConfigArgument{s.Identity: &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalarFor(s.IdentityColumn().Type))}}

	queries[s.Collection] = &graphql.Field{
		Type: graphql.NewList(object),
		Args: graphql.FieldConfigArgument{
			"filter":        &graphql.ArgumentConfig{Type: filterInput},
			"sortField":     &graphql.ArgumentConfig{Type: graphql.String},
			"sortDirection": &graphql.ArgumentConfig{Type: graphql.String},
			"page":          &graphql.ArgumentConfig{Type: graphql.Int},
			"limit":         &graphql.ArgumentConfig{Type: graphql.Int},
		},
		Resolve: b.list,
	}
	queries[s.Singular] = &graphql.Field{Type: object, Args: idArg, Resolve: b.get}

	mutations["add"+s.Title] = &graphql.Field{
		Type:    object,
		Args:    graphql.FieldConfigArgument{"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)}},
		Resolve: b.add,
	}
	mutations["update"+s.Title] = &graphql.Field{
		Type: object,
		Args: graphql.FieldConfigArgument{
			s.Identity: idArg[s.Identity],
			"input":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)},
		},
		Resolve: b.update,
	}
	mutations["delete"+s.Title] = &graphql.Field{Type: graphql.String, Args: idArg, Resolve: b.delete}
}

func scalarFor(t domain.FieldType) graphql.Output {
	if t == domain.FieldInt {
		return graphql.Int
	}
	return graphql.String
}

func objectFields(s domain.Schema, required []string) graphql.Fields {
	fields := graphql.Fields{}
	for _, c := range s.Columns {
		var typ graphql.Output = scalarFor(c.Type)
		if contains(required, c.Name) {
			typ = graphql.NewNonNull(typ)
		}
		fields[c.Name] = &graphql.Field{Type: typ}
	}
	return fields
}

func inputFields(s domain.Schema, required []string) graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, c := range s.RequiredColumns() {
		var typ graphql.Input = graphql.String
		if c.Type == domain.FieldInt {
			typ = graphql.Int
		}
		if contains(required, c.Name) {
			typ = graphql.NewNonNull(typ)
		}
		fields[c.Name] = &graphql.InputObjectFieldConfig{Type: typ}
	}
	return fields
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

// binding — резолверы одного вида записей.
type binding[R domain.Record] struct {
	svc    collectionService[R]
	schema domain.Schema
	logger *log.Entry
}

func (b *binding[R]) list(p graphql.ResolveParams) (any, error) {
	params := query.Params{
		SortField:     stringArg(p.Args, "sortField"),
		SortDirection: stringArg(p.Args, "sortDirection"),
		Page:          intArg(p.Args, "page"),
		Limit:         intArg(p.Args, "limit"),
	}
	if filter, ok := p.Args["filter"].(map[string]any); ok {
		params.Field = stringArg(filter, "field")
		params.Operator = stringArg(filter, "operator")
		params.Value = stringArg(filter, "value")
	}
	q, err := params.ListQuery()
	if err != nil {
		return nil, err
	}
	records, err := b.svc.List(p.Context, q)
	if err != nil {
		return nil, b.failure(err)
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.AsMap(rec))
	}
	return out, nil
}

// get возвращает null для отсутствующей записи.
func (b *binding[R]) get(p graphql.ResolveParams) (any, error) {
	rec, err := b.svc.Get(p.Context, b.identity(p.Args))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, b.failure(err)
	}
	return domain.AsMap(rec), nil
}

func (b *binding[R]) add(p graphql.ResolveParams) (any, error) {
	rec, err := b.svc.Create(p.Context, inputArg(p.Args))
	if err != nil {
		return nil, b.failure(err)
	}
	return domain.AsMap(rec), nil
}

// update сливает переданные поля с существующей записью.
func (b *binding[R]) update(p graphql.ResolveParams) (any, error) {
	rec, err := b.svc.Patch(p.Context, b.identity(p.Args), inputArg(p.Args))
	if err != nil {
		return nil, b.failure(err)
	}
	return domain.AsMap(rec), nil
}

func (b *binding[R]) delete(p graphql.ResolveParams) (any, error) {
	id := b.identity(p.Args)
	if _, err := b.svc.Delete(p.Context, id); err != nil {
		return nil, b.failure(err)
	}
	return fmt.Sprintf("%s with ID %s deleted successfully.", b.schema.Title, id), nil
}

func (b *binding[R]) identity(args map[string]any) string {
	return fmt.Sprint(args[b.schema.Identity])
}

// failure переводит ошибку сервиса в сообщение для списка errors.
func (b *binding[R]) failure(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errors.New(b.schema.Title + " not found")
	case domain.IsClientError(err):
		return err
	default:
		b.logger.WithError(err).Error("graphql resolver failed")
		return err
	}
}

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, name string) string {
	if v, ok := args[name].(int); ok {
		return fmt.Sprint(v)
	}
	return ""
}

func inputArg(args map[string]any) domain.Input {
	raw, _ := args["input"].(map[string]any)
	in := domain.Input{}
	for key, v := range raw {
		switch value := v.(type) {
		case int:
			in[key] = domain.IntValue(int64(value))
		case string:
			in[key] = domain.StringValue(value)
		case nil:
		default:
			in[key] = domain.StringValue(fmt.Sprint(value))
		}
	}
	return in
}
