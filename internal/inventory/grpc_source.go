package inventory

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
)

// GRPCOptions configure a GRPCSource.
type GRPCOptions struct {
	Address string
	Session string
	// CAFile enables TLS verified against the given CA bundle.
	CAFile      string
	DialOptions []grpc.DialOption
}

// GRPCSource reads inventory from an inventory server.
type GRPCSource struct {
	conn    *grpc.ClientConn
	session string
}

// NewGRPCSource creates a client for the server at opts.Address. The
// connection is established lazily on the first call.
func NewGRPCSource(opts GRPCOptions) (*GRPCSource, error) {
	creds := insecure.NewCredentials()
	if opts.CAFile != "" {
		tlsCreds, err := credentials.NewClientTLSFromFile(opts.CAFile, "")
		if err != nil {
			return nil, fmt.Errorf("load ca: %w", err)
		}
		creds = tlsCreds
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, opts.DialOptions...)
	conn, err := grpc.NewClient(opts.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial inventory %s: %w", opts.Address, err)
	}
	return &GRPCSource{conn: conn, session: opts.Session}, nil
}

// Close tears down the client connection.
func (s *GRPCSource) Close() error { return s.conn.Close() }

// Catalog fetches the manifest.
func (s *GRPCSource) Catalog(ctx context.Context) (catalog.Manifest, error) {
	var manifest catalog.Manifest
	if err := s.call(ctx, methodGetCatalog, &emptypb.Empty{}, &manifest); err != nil {
		return catalog.Manifest{}, err
	}
	return manifest, nil
}

// Nodes fetches the roster.
func (s *GRPCSource) Nodes(ctx context.Context) ([]Node, error) {
	var list nodeList
	if err := s.call(ctx, methodListNodes, &emptypb.Empty{}, &list); err != nil {
		return nil, err
	}
	if list.Nodes == nil {
		list.Nodes = []Node{}
	}
	return list.Nodes, nil
}

// NodeData fetches one node's data.
func (s *GRPCSource) NodeData(ctx context.Context, id string) (NodeData, error) {
	var data NodeData
	if err := s.call(ctx, methodGetNodeData, wrapperspb.String(id), &data); err != nil {
		return NodeData{}, err
	}
	return data, nil
}

func (s *GRPCSource) call(ctx context.Context, method string, in any, v any) error {
	if s.session != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, sessionMetadataKey, s.session)
	}
	out := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, method, in, out); err != nil {
		return fromStatus(method, err)
	}
	return fromStruct(out, v)
}

func fromStatus(method string, err error) error {
	switch status.Code(err) {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.NotFound:
		return fmt.Errorf("%s: %w", method, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", method, err)
}
