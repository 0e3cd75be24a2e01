package grpcsvc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

// Record — запись в том виде, в каком её вернул сервер.
// Числа приходят как float64 (google.protobuf.Struct).
type Record = map[string]any

// Client — типизированная обёртка над CostumeShopServiceClient.
type Client struct {
	conn *grpc.ClientConn
	rpc  costumeshopv1.CostumeShopServiceClient
}

// Dial подключается к серверу. Без опций используется незащищённое соединение.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn, rpc: costumeshopv1.NewCostumeShopServiceClient(conn)}, nil
}

// NewClient оборачивает уже открытое соединение. Close такого клиента ничего не закрывает.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rpc: costumeshopv1.NewCostumeShopServiceClient(cc)}
}

// Close закрывает соединение, открытое Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Shops(ctx context.Context, req costumeshopv1.ListRequest) ([]Record, error) {
	return c.list(ctx, req, "shops", c.rpc.GetShops)
}

func (c *Client) Shop(ctx context.Context, id int64) (Record, error) {
	return c.get(ctx, "SHOP_ID", id, c.rpc.GetShop)
}

func (c *Client) Costumes(ctx context.Context, req costumeshopv1.ListRequest) ([]Record, error) {
	return c.list(ctx, req, "costumes", c.rpc.GetCostumes)
}

func (c *Client) Costume(ctx context.Context, id string) (Record, error) {
	return c.get(ctx, "COSTUME_ID", id, c.rpc.GetCostume)
}

func (c *Client) Offers(ctx context.Context, req costumeshopv1.ListRequest) ([]Record, error) {
	return c.list(ctx, req, "offers", c.rpc.GetOffers)
}

func (c *Client) Offer(ctx context.Context, id string) (Record, error) {
	return c.get(ctx, "OFFER_ID", id, c.rpc.GetOffer)
}

type rpcCall func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func (c *Client) list(ctx context.Context, req costumeshopv1.ListRequest, key string, call rpcCall) ([]Record, error) {
	in, err := req.Struct()
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out, err := call(ctx, in)
	if err != nil {
		return nil, err
	}
	items := out.GetFields()[key].GetListValue().GetValues()
	records := make([]Record, 0, len(items))
	for _, item := range items {
		records = append(records, item.GetStructValue().AsMap())
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, field string, id any, call rpcCall) (Record, error) {
	in, err := costumeshopv1.IDRequest(field, id)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out, err := call(ctx, in)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
