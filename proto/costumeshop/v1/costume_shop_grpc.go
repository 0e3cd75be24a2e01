// Package costumeshopv1 описывает gRPC-сервис costumeShop.CostumeShopService.
// Сообщения сервиса — google.protobuf.Struct, поэтому дескрипторы написаны вручную
// по образцу protoc-gen-go-grpc.
package costumeshopv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	CostumeShopService_GetShops_FullMethodName    = "/costumeShop.CostumeShopService/GetShops"
	CostumeShopService_GetShop_FullMethodName     = "/costumeShop.CostumeShopService/GetShop"
	CostumeShopService_GetCostumes_FullMethodName = "/costumeShop.CostumeShopService/GetCostumes"
	CostumeShopService_GetCostume_FullMethodName  = "/costumeShop.CostumeShopService/GetCostume"
	CostumeShopService_GetOffers_FullMethodName   = "/costumeShop.CostumeShopService/GetOffers"
	CostumeShopService_GetOffer_FullMethodName    = "/costumeShop.CostumeShopService/GetOffer"
)

// CostumeShopServiceClient is the client API for CostumeShopService service.
type CostumeShopServiceClient interface {
	GetShops(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetShop(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetCostumes(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetCostume(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetOffers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetOffer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type costumeShopServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCostumeShopServiceClient(cc grpc.ClientConnInterface) CostumeShopServiceClient {
	return &costumeShopServiceClient{cc}
}

func (c *costumeShopServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *costumeShopServiceClient) GetShops(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CostumeShopService_GetShops_FullMethodName, in, opts)
}

func (c *costumeShopServiceClient) GetShop(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CostumeShopService_GetShop_FullMethodName, in, opts)
}

func (c *costumeShopServiceClient) GetCostumes(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CostumeShopService_GetCostumes_FullMethodName, in, opts)
}

func (c *costumeShopServiceClient) GetCostume(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CostumeShopService_GetCostume_FullMethodName, in, opts)
}

func (c *costumeShopServiceClient) GetOffers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CostumeShopService_GetOffers_FullMethodName, in, opts)
}

func (c *costumeShopServiceClient) GetOffer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CostumeShopService_GetOffer_FullMethodName, in, opts)
}

// CostumeShopServiceServer is the server API for CostumeShopService service.
// All implementations must embed UnimplementedCostumeShopServiceServer
// for forward compatibility.
type CostumeShopServiceServer interface {
	GetShops(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetShop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCostumes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCostume(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOffers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOffer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedCostumeShopServiceServer()
}

// UnimplementedCostumeShopServiceServer must be embedded to have
// forward compatible implementations.
type UnimplementedCostumeShopServiceServer struct{}

func (UnimplementedCostumeShopServiceServer) GetShops(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetShops not implemented")
}
func (UnimplementedCostumeShopServiceServer) GetShop(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetShop not implemented")
}
func (UnimplementedCostumeShopServiceServer) GetCostumes(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCostumes not implemented")
}
func (UnimplementedCostumeShopServiceServer) GetCostume(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCostume not implemented")
}
func (UnimplementedCostumeShopServiceServer) GetOffers(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOffers not implemented")
}
func (UnimplementedCostumeShopServiceServer) GetOffer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOffer not implemented")
}
func (UnimplementedCostumeShopServiceServer) mustEmbedUnimplementedCostumeShopServiceServer() {}

func RegisterCostumeShopServiceServer(s grpc.ServiceRegistrar, srv CostumeShopServiceServer) {
	s.RegisterService(&CostumeShopService_ServiceDesc, srv)
}

// unaryHandler собирает grpc.MethodHandler для метода с Struct на входе и выходе.
func unaryHandler(fullMethod string, call func(CostumeShopServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CostumeShopServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CostumeShopServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	_CostumeShopService_GetShops_Handler    = unaryHandler(CostumeShopService_GetShops_FullMethodName, CostumeShopServiceServer.GetShops)
	_CostumeShopService_GetShop_Handler     = unaryHandler(CostumeShopService_GetShop_FullMethodName, CostumeShopServiceServer.GetShop)
	_CostumeShopService_GetCostumes_Handler = unaryHandler(CostumeShopService_GetCostumes_FullMethodName, CostumeShopServiceServer.GetCostumes)
	_CostumeShopService_GetCostume_Handler  = unaryHandler(CostumeShopService_GetCostume_FullMethodName, CostumeShopServiceServer.GetCostume)
	_CostumeShopService_GetOffers_Handler   = unaryHandler(CostumeShopService_GetOffers_FullMethodName, CostumeShopServiceServer.GetOffers)
	_CostumeShopService_GetOffer_Handler    = unaryHandler(CostumeShopService_GetOffer_FullMethodName, CostumeShopServiceServer.GetOffer)
)

// CostumeShopService_ServiceDesc is the grpc.ServiceDesc for CostumeShopService service.
var CostumeShopService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "costumeShop.CostumeShopService",
	HandlerType: (*CostumeShopServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetShops", Handler: _CostumeShopService_GetShops_Handler},
		{MethodName: "GetShop", Handler: _CostumeShopService_GetShop_Handler},
		{MethodName: "GetCostumes", Handler: _CostumeShopService_GetCostumes_Handler},
		{MethodName: "GetCostume", Handler: _CostumeShopService_GetCostume_Handler},
		{MethodName: "GetOffers", Handler: _CostumeShopService_GetOffers_Handler},
		{MethodName: "GetOffer", Handler: _CostumeShopService_GetOffer_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "costumeshop/v1/costume_shop.proto",
}
