package app

import (
	"context"
	"net"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

func TestGRPCServerReflectionDescribesCatalog(t *testing.T) {
	logger := log.WithField("test", "grpc-reflection")
	deps, err := initRuntimeDependencies(context.Background(), Config{StorageDriver: StorageDriverMemory}, logger)
	require.NoError(t, err)
	defer func() { _ = deps.closeFn() }()

	server, _ := newGRPCServer(deps, logger)
	listener := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(listener) }()
	defer server.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return listener.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := reflectionpb.NewServerReflectionClient(conn).ServerReflectionInfo(ctx)
	require.NoError(t, err)

	ask := func(req *reflectionpb.ServerReflectionRequest) *reflectionpb.ServerReflectionResponse {
		require.NoError(t, stream.Send(req))
		resp, err := stream.Recv()
		require.NoError(t, err)
		return resp
	}

	services := ask(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{},
	}).GetListServicesResponse().GetService()
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.GetName())
	}
	assert.Contains(t, names, costumeshopv1.CostumeShopService_ServiceDesc.ServiceName)

	resp := ask(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_FileContainingSymbol{
			FileContainingSymbol: costumeshopv1.CostumeShopService_ServiceDesc.ServiceName,
		},
	})
	require.Nil(t, resp.GetErrorResponse(), "reflection error: %v", resp.GetErrorResponse())
	files := resp.GetFileDescriptorResponse().GetFileDescriptorProto()
	require.NotEmpty(t, files)

	var file descriptorpb.FileDescriptorProto
	require.NoError(t, proto.Unmarshal(files[0], &file))
	assert.Equal(t, "costumeshop/v1/costume_shop.proto", file.GetName())
	require.Len(t, file.GetService(), 1)
	assert.Len(t, file.GetService()[0].GetMethod(), len(costumeshopv1.CostumeShopService_ServiceDesc.Methods))
}
