package grpc

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// protoFile is the name the token service descriptor is registered under.
const protoFile = "carmeet/security/token_service.proto"

const (
	typeString = ".google.protobuf.StringValue"
	typeInt64  = ".google.protobuf.Int64Value"
	typeStruct = ".google.protobuf.Struct"
	typeEmpty  = ".google.protobuf.Empty"
)

// tokenServiceFile describes TokenService the way protoc would, so server
// reflection can resolve its methods and message types.
func tokenServiceFile() *descriptorpb.FileDescriptorProto {
	method := func(name, in, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(in),
			OutputType: proto.String(out),
		}
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(protoFile),
		Package: proto.String("carmeet.security"),
		Dependency: []string{
			"google/protobuf/empty.proto",
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Syntax: proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("TokenService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method(MethodIssueToken, typeString, typeStruct),
				method(MethodValidateToken, typeString, typeString),
				method(MethodRevokeToken, typeString, typeEmpty),
				method(MethodRevokeUserTokens, typeString, typeEmpty),
				method(MethodRemoveExpired, typeEmpty, typeInt64),
				method(MethodRequestActivation, typeStruct, typeStruct),
				method(MethodActivate, typeString, typeString),
			},
		}},
	}
}

func init() {
	fd, err := protodesc.NewFile(tokenServiceFile(), protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
}
