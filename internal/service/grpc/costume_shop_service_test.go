package grpcsvc_test

import (
	"context"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
	grpcsvc "github.com/vladislavdragonenkov/costumeshop/internal/service/grpc"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/memory"
	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

const bufSize = 1024 * 1024

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

// brokenTables отвечает ошибкой хранилища на любое чтение.
type brokenTables struct {
	domain.TableStore
}

func (brokenTables) ReadTable(context.Context, string) (domain.Table, error) {
	return domain.Table{}, domain.ErrStorageUnavailable
}

func seededTables(t *testing.T) domain.TableStore {
	t.Helper()
	ctx := context.Background()
	tables := memory.NewTableStore()
	require.NoError(t, tables.WriteTable(ctx, "shops", domain.Table{
		Header: []string{"SHOP_ID", "SHOP_NAME", "CITY", "ADDRESS", "PHONE"},
		Rows: [][]string{
			{"1", "Maskarada", "Kraków", "Rynek 1", "111"},
			{"2", "Bal", "Warszawa", "Nowy Świat 5", "222"},
		},
	}))
	require.NoError(t, tables.WriteTable(ctx, "costumes", domain.Table{
		Header: []string{"COSTUME_ID", "COSTUME_NAME", "TYPE", "SIZE", "AVAILABLE", "SHOP_ID"},
		Rows: [][]string{
			{"c1", "Pirate", "Adult", "M", "3", "1"},
			{"c2", "Witch", "Adult", "S", "0", "1"},
		},
	}))
	require.NoError(t, tables.WriteTable(ctx, "offers", domain.Table{
		Header: []string{"OFFER_ID", "SHOP_ID", "DISCOUNT", "TITLE", "DESCRIPTION"},
		Rows:   [][]string{{"o1", "1", "10%", "Halloween", "Spooky"}},
	}))
	return tables
}

func newTestServer(t *testing.T, tables domain.TableStore) (*grpc.ClientConn, *grpcsvc.Client) {
	t.Helper()
	listener := bufconn.Listen(bufSize)
	logger := loggerForTests()
	cat := catalog.New(tables, catalog.WithLogger(logger))
	service := grpcsvc.NewCostumeShopService(cat, logger)

	server := grpc.NewServer()
	costumeshopv1.RegisterCostumeShopServiceServer(server, service)
	go func() {
		if err := server.Serve(listener); err != nil {
			logger.WithError(err).Error("grpc serve failed")
		}
	}()

	dialer := func(context.Context, string) (net.Conn, error) {
		return listener.Dial()
	}
	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})
	return conn, grpcsvc.NewClient(conn)
}

func TestGetShops(t *testing.T) {
	_, client := newTestServer(t, seededTables(t))

	shops, err := client.Shops(context.Background(), costumeshopv1.ListRequest{})
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Bal", shops[0]["SHOP_NAME"])
	assert.Equal(t, float64(2), shops[0]["SHOP_ID"])

	shops, err = client.Shops(context.Background(), costumeshopv1.ListRequest{
		Filter:        &costumeshopv1.Filter{Field: "CITY", Operator: "equals", Value: "Kraków"},
		SortDirection: "DESC",
	})
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Maskarada", shops[0]["SHOP_NAME"])
}

func TestGetCostumesSortedAndPaged(t *testing.T) {
	_, client := newTestServer(t, seededTables(t))

	costumes, err := client.Costumes(context.Background(), costumeshopv1.ListRequest{SortField: "AVAILABLE", SortDirection: "DESC", Limit: 1})
	require.NoError(t, err)
	require.Len(t, costumes, 1)
	assert.Equal(t, "c1", costumes[0]["COSTUME_ID"])
}

func TestGetSingleRecords(t *testing.T) {
	_, client := newTestServer(t, seededTables(t))
	ctx := context.Background()

	shop, err := client.Shop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Maskarada", shop["SHOP_NAME"])

	costume, err := client.Costume(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Witch", costume["COSTUME_NAME"])

	offer, err := client.Offer(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Halloween", offer["TITLE"])

	offers, err := client.Offers(ctx, costumeshopv1.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestErrorCodes(t *testing.T) {
	conn, client := newTestServer(t, seededTables(t))
	ctx := context.Background()

	_, err := client.Shop(ctx, 42)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.Shops(ctx, costumeshopv1.ListRequest{Filter: &costumeshopv1.Filter{Field: "NOPE", Value: "x"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Shops(ctx, costumeshopv1.ListRequest{SortDirection: "sideways"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	raw := costumeshopv1.NewCostumeShopServiceClient(conn)
	_, err = raw.GetShop(ctx, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, _ := structpb.NewStruct(map[string]any{"page": "two"})
	_, err = raw.GetOffers(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStorageErrorIsUnavailable(t *testing.T) {
	_, client := newTestServer(t, brokenTables{TableStore: memory.NewTableStore()})

	_, err := client.Shops(context.Background(), costumeshopv1.ListRequest{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
