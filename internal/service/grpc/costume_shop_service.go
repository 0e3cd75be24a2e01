package grpcsvc

import (
	"context"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

// CostumeShopService реализует gRPC API чтения каталога.
type CostumeShopService struct {
	costumeshopv1.UnimplementedCostumeShopServiceServer

	catalog *catalog.Catalog
	logger  *log.Entry
}

// reader — операции коллекции, которые использует gRPC-слой.
type reader[R domain.Record] interface {
	Schema() domain.Schema
	List(ctx context.Context, q domain.ListQuery) ([]R, error)
	Get(ctx context.Context, id string) (R, error)
}

// NewCostumeShopService конструирует сервис поверх каталога.
func NewCostumeShopService(cat *catalog.Catalog, logger *log.Entry) *CostumeShopService {
	if logger == nil {
		logger = log.New().WithField("component", "costume-shop-service")
	}
	return &CostumeShopService{catalog: cat, logger: logger}
}

// GetShops возвращает страницу магазинов: {"shops": [...]}.
func (s *CostumeShopService) GetShops(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return listRecords[*domain.Shop](ctx, s.logger, s.catalog.Shops, req, "GetShops")
}

// GetShop возвращает магазин по SHOP_ID.
func (s *CostumeShopService) GetShop(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return getRecord[*domain.Shop](ctx, s.logger, s.catalog.Shops, req, "GetShop")
}

// GetCostumes возвращает страницу костюмов: {"costumes": [...]}.
func (s *CostumeShopService) GetCostumes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return listRecords[*domain.Costume](ctx, s.logger, s.catalog.Costumes, req, "GetCostumes")
}

// GetCostume возвращает костюм по COSTUME_ID.
func (s *CostumeShopService) GetCostume(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return getRecord[*domain.Costume](ctx, s.logger, s.catalog.Costumes, req, "GetCostume")
}

// GetOffers возвращает страницу акций: {"offers": [...]}.
func (s *CostumeShopService) GetOffers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return listRecords[*domain.Offer](ctx, s.logger, s.catalog.Offers, req, "GetOffers")
}

// GetOffer возвращает акцию по OFFER_ID.
func (s *CostumeShopService) GetOffer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return getRecord[*domain.Offer](ctx, s.logger, s.catalog.Offers, req, "GetOffer")
}

func listRecords[R domain.Record](ctx context.Context, logger *log.Entry, svc reader[R], req *structpb.Struct, operation string) (*structpb.Struct, error) {
	parsed, err := costumeshopv1.ParseListRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	params := query.Params{
		SortField:     parsed.SortField,
		SortDirection: parsed.SortDirection,
		Page:          countText(parsed.Page),
		Limit:         countText(parsed.Limit),
	}
	if parsed.Filter != nil {
		params.Field = parsed.Filter.Field
		params.Operator = parsed.Filter.Operator
		params.Value = parsed.Filter.Value
	}
	q, err := params.ListQuery()
	if err != nil {
		return nil, toStatus(logger, err, operation)
	}

	records, err := svc.List(ctx, q)
	if err != nil {
		return nil, toStatus(logger, err, operation)
	}
	items := make([]any, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.AsMap(rec))
	}
	out, err := structpb.NewStruct(map[string]any{svc.Schema().Collection: items})
	if err != nil {
		logger.WithError(err).WithField("operation", operation).Error("failed to encode response")
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func getRecord[R domain.Record](ctx context.Context, logger *log.Entry, svc reader[R], req *structpb.Struct, operation string) (*structpb.Struct, error) {
	identity := svc.Schema().Identity
	id, ok := costumeshopv1.IDFromRequest(req, identity)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s is required", identity)
	}

	rec, err := svc.Get(ctx, id)
	if err != nil {
		return nil, toStatus(logger, err, operation)
	}
	out, err := structpb.NewStruct(domain.AsMap(rec))
	if err != nil {
		logger.WithError(err).WithField("operation", operation).Error("failed to encode response")
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// countText передаёт 0 как «не задано».
func countText(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// toStatus переводит ошибку сервиса коллекции в статус gRPC.
func toStatus(logger *log.Entry, err error, operation string) error {
	entry := logger.WithError(err).WithField("operation", operation)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		entry.Debug("record not found")
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrValidationFailed), errors.Is(err, domain.ErrInvalidOperand):
		entry.Debug("invalid request")
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		entry.Error("storage unavailable")
		return status.Error(codes.Unavailable, "storage unavailable")
	default:
		entry.Error("request failed")
		return status.Error(codes.Internal, "internal error")
	}
}
