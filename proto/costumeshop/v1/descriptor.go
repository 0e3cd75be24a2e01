package costumeshopv1

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const goPackage = "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1;costumeshopv1"

// File_costumeshop_v1_costume_shop_proto — дескриптор costume_shop.proto, собранный из ServiceDesc.
// Регистрируется в protoregistry.GlobalFiles, чтобы gRPC reflection мог описать сервис.
var File_costumeshop_v1_costume_shop_proto protoreflect.FileDescriptor

func init() {
	fd, err := buildFileDescriptor(&CostumeShopService_ServiceDesc)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Errorf("register %s: %w", fd.Path(), err))
	}
	File_costumeshop_v1_costume_shop_proto = fd
}

func buildFileDescriptor(desc *grpc.ServiceDesc) (protoreflect.FileDescriptor, error) {
	structName := "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())

	pkg, service := splitServiceName(desc.ServiceName)
	methods := make([]*descriptorpb.MethodDescriptorProto, 0, len(desc.Methods))
	for _, m := range desc.Methods {
		methods = append(methods, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.MethodName),
			InputType:  proto.String(structName),
			OutputType: proto.String(structName),
		})
	}

	path, ok := desc.Metadata.(string)
	if !ok {
		return nil, fmt.Errorf("service %s: metadata must be a proto file path", desc.ServiceName)
	}
	file := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(path),
		Package:    proto.String(pkg),
		Dependency: []string{structpb.File_google_protobuf_struct_proto.Path()},
		Syntax:     proto.String("proto3"),
		Options:    &descriptorpb.FileOptions{GoPackage: proto.String(goPackage)},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String(service),
			Method: methods,
		}},
	}
	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("build descriptor for %s: %w", path, err)
	}
	return fd, nil
}

func splitServiceName(full string) (pkg, name string) {
	n := protoreflect.FullName(full)
	return string(n.Parent()), string(n.Name())
}
