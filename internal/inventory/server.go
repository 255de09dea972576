package inventory

import (
	"context"
	"crypto/subtle"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// sessionMetadataKey carries the session token on every RPC.
const sessionMetadataKey = "x-hotfix-session"

// ServerOptions configure the inventory RPC server.
type ServerOptions struct {
	ListenAddr  string
	MaxMsgBytes int
	TLS         TLSOptions
	// Session, when set, must match the token presented by clients.
	Session string
	Logger  *zap.Logger
}

// TLSOptions describe optional TLS configuration for the RPC server.
type TLSOptions struct {
	CertFile string
	KeyFile  string
	ClientCA string
}

// Server exposes a Source over gRPC so dashboards can read it remotely.
type Server struct {
	src    Source
	opts   ServerOptions
	logger *zap.Logger
	grpc   *grpc.Server
}

// NewServer creates an inventory server backed by src.
func NewServer(src Source, opts ServerOptions) *Server {
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:50061"
	}
	if opts.MaxMsgBytes == 0 {
		opts.MaxMsgBytes = 32 << 20
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{src: src, opts: opts, logger: opts.Logger.Named("inventory-server")}
}

// Start listens on the configured address until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	target, err := parseListenAddr(s.opts.ListenAddr)
	if err != nil {
		return err
	}
	if target.network == "unix" {
		if err := os.Remove(target.address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}
	lis, err := net.Listen(target.network, target.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.ListenAddr, err)
	}
	s.logger.Info("inventory server listening", zap.String("addr", s.opts.ListenAddr))
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until the context is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	serverOpts, err := s.serverOptions()
	if err != nil {
		return err
	}
	s.grpc = grpc.NewServer(serverOpts...)
	s.grpc.RegisterService(&inventoryServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.grpc.GracefulStop()
	}()

	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// GetCatalog returns the manifest.
func (s *Server) GetCatalog(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	manifest, err := s.src.Catalog(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(manifest)
}

// ListNodes returns the roster.
func (s *Server) ListNodes(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	nodes, err := s.src.Nodes(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(nodeList{Nodes: nodes})
}

// GetNodeData returns one node's role, status and events.
func (s *Server) GetNodeData(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error) {
	data, err := s.src.NodeData(ctx, id.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(data)
}

func (s *Server) serverOptions() ([]grpc.ServerOption, error) {
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(s.opts.MaxMsgBytes),
		grpc.MaxSendMsgSize(s.opts.MaxMsgBytes),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 20 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(s.logCalls, s.authorize),
	}
	if s.opts.TLS.CertFile != "" && s.opts.TLS.KeyFile != "" {
		cred, err := s.loadTLSCreds()
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(cred))
	}
	return opts, nil
}

func (s *Server) loadTLSCreds() (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(s.opts.TLS.CertFile, s.opts.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load tls keypair: %w", err)
	}
	tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	if s.opts.TLS.ClientCA != "" {
		caData, err := os.ReadFile(s.opts.TLS.ClientCA)
		if err != nil {
			return nil, fmt.Errorf("read client ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caData) {
			return nil, fmt.Errorf("append client ca certs")
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return credentials.NewTLS(tlsConfig), nil
}

func (s *Server) authorize(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.opts.Session == "" {
		return handler(ctx, req)
	}
	md, _ := metadata.FromIncomingContext(ctx)
	for _, token := range md.Get(sessionMetadataKey) {
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Session)) == 1 {
			return handler(ctx, req)
		}
	}
	return nil, status.Error(codes.Unauthenticated, "session expired")
}

func (s *Server) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	fields := []zap.Field{
		zap.String("method", info.FullMethod),
		zap.String("peer", peerAddress(ctx)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		s.logger.Warn("rpc failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Debug("rpc served", fields...)
	}
	return resp, err
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func peerAddress(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}
