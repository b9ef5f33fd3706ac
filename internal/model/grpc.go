package model

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/trustlens/internal/content"
)

// #region methods

// The Python model sidecar serves one service per process. Messages are
// google.protobuf.Struct so no generated stubs are needed on either side.
const (
	methodClassify = "/trustlens.v1.Classifier/Classify"
	methodStatus   = "/trustlens.v1.Classifier/Status"
)

// #endregion methods

// #region client-struct

// GRPCClassifier calls a model sidecar for one domain.
type GRPCClassifier struct {
	conn    *grpc.ClientConn
	invoker grpc.ClientConnInterface
	domain  content.Domain
	timeout time.Duration
}

// #endregion client-struct

// #region constructor

// NewGRPCClassifier connects lazily to the sidecar at addr.
func NewGRPCClassifier(addr string, domain content.Domain, timeout time.Duration) (*GRPCClassifier, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCClassifier{conn: conn, invoker: conn, domain: domain, timeout: timeout}, nil
}

// NewGRPCClassifierWithConn wraps an existing connection. Used for testing
// without a real sidecar.
func NewGRPCClassifierWithConn(cc grpc.ClientConnInterface, domain content.Domain, timeout time.Duration) *GRPCClassifier {
	return &GRPCClassifier{invoker: cc, domain: domain, timeout: timeout}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection.
func (c *GRPCClassifier) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region classify

// Classify sends text to the sidecar.
func (c *GRPCClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	req, err := structpb.NewStruct(map[string]any{
		"domain": string(c.domain),
		"text":   text,
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("build classify request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, methodClassify, req, resp); err != nil {
		return Prediction{}, fmt.Errorf("classify rpc: %w", err)
	}
	return decodePrediction(resp)
}

// #endregion classify

// #region status

// Ready reports whether the sidecar has weights loaded for this domain.
func (c *GRPCClassifier) Ready(ctx context.Context) (bool, error) {
	req, err := structpb.NewStruct(map[string]any{"domain": string(c.domain)})
	if err != nil {
		return false, fmt.Errorf("build status request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := c.invoke(ctx, methodStatus, req, resp); err != nil {
		return false, fmt.Errorf("status rpc: %w", err)
	}
	return resp.GetFields()["loaded"].GetBoolValue(), nil
}

// #endregion status

// #region helpers

func (c *GRPCClassifier) invoke(ctx context.Context, method string, req, resp *structpb.Struct) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.invoker.Invoke(ctx, method, req, resp)
}

// decodePrediction reads {class_index, confidence, probabilities}.
func decodePrediction(s *structpb.Struct) (Prediction, error) {
	fields := s.GetFields()
	idx, ok := fields["class_index"]
	if !ok {
		return Prediction{}, fmt.Errorf("classify response missing class_index")
	}
	p := Prediction{ClassIndex: int(idx.GetNumberValue())}
	if conf, ok := fields["confidence"]; ok {
		p.Confidence = conf.GetNumberValue()
	} else {
		p.Confidence = 1
	}
	for _, v := range fields["probabilities"].GetListValue().GetValues() {
		p.Probabilities = append(p.Probabilities, v.GetNumberValue())
	}
	return p, nil
}

// #endregion helpers
