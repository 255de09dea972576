package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hotfix.v1.Inventory"

const (
	methodGetCatalog  = "/" + ServiceName + "/GetCatalog"
	methodListNodes   = "/" + ServiceName + "/ListNodes"
	methodGetNodeData = "/" + ServiceName + "/GetNodeData"
)

// inventoryService is the server side of the Inventory service. Payloads are
// well-known protobuf types carrying the JSON documents of the REST backend.
type inventoryService interface {
	GetCatalog(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListNodes(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetNodeData(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*inventoryService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCatalog", Handler: getCatalogHandler},
		{MethodName: "ListNodes", Handler: listNodesHandler},
		{MethodName: "GetNodeData", Handler: getNodeDataHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hotfix/v1/inventory.proto",
}

func getCatalogHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(inventoryService).GetCatalog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetCatalog}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(inventoryService).GetCatalog(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listNodesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(inventoryService).ListNodes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListNodes}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(inventoryService).ListNodes(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getNodeDataHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(inventoryService).GetNodeData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetNodeData}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(inventoryService).GetNodeData(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// toStruct converts a JSON-encodable object into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert payload: %w", err)
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into v.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("convert payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

type nodeList struct {
	Nodes []Node `json:"nodes"`
}
