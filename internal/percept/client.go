package percept

// #region imports
import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/garantiplus/brain-controller/internal/canonical"
)

// #endregion

// #region method

// The perception contract is an open dict on the Python side, so the
// payload travels as a schema-less Struct rather than a generated stub.
const extractMethod = "/brain.perception.v1.Perception/Extract"

// #endregion

// #region client-struct

// Client wraps the gRPC connection to the Python NLP service.
type Client struct {
	conn grpc.ClientConnInterface
	cc   *grpc.ClientConn
}

// #endregion

// #region constructor

// NewClient connects to the perception gRPC server.
func NewClient(addr string) (*Client, error) {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: cc, cc: cc}, nil
}

// NewClientWithConn creates a Client over an injected connection.
// Used for testing without a real gRPC server.
func NewClientWithConn(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// #endregion

// #region close

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// #endregion

// #region extract

// Extract sends one user message to the NLP service and parses the
// returned {intent, entities, flags} structure. Loosely typed entity values
// and flags are coerced here, never stored raw.
func (c *Client) Extract(ctx context.Context, sessionID, message string) (Percept, error) {
	req, err := structpb.NewStruct(map[string]any{
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		return Percept{}, fmt.Errorf("build request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, extractMethod, req, resp); err != nil {
		return Percept{}, fmt.Errorf("extract rpc: %w", err)
	}

	return parsePercept(resp.AsMap()), nil
}

// parsePercept maps the wire dict onto a Percept, tolerating absent or
// oddly typed fields.
func parsePercept(m map[string]any) Percept {
	p := Percept{
		Entities: map[string]string{},
		Flags:    map[string]bool{},
	}

	if intent, ok := m["intent"].(string); ok {
		p.Intent = intent
	}
	if entities, ok := m["entities"].(map[string]any); ok {
		for k, v := range entities {
			if s := valueString(v); s != "" {
				p.Entities[k] = s
			}
		}
	}
	if flags, ok := m["flags"].(map[string]any); ok {
		for k, v := range flags {
			p.Flags[k] = canonical.Bool(v)
		}
	}
	return p
}

func valueString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// #endregion
