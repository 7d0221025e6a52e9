package percept

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// fakeConn answers Invoke with a canned response struct.
type fakeConn struct {
	resp *structpb.Struct
	err  error

	gotMethod string
	gotReq    *structpb.Struct
}

func (f *fakeConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	f.gotMethod = method
	f.gotReq = args.(*structpb.Struct)
	if f.err != nil {
		return f.err
	}
	proto.Merge(reply.(proto.Message), f.resp)
	return nil
}

func (*fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("build struct: %v", err)
	}
	return s
}

func TestClientExtract(t *testing.T) {
	conn := &fakeConn{resp: mustStruct(t, map[string]any{
		"intent": "RenovatePolicy",
		"entities": map[string]any{
			"policy_number": "GPC123456",
			"vehicle_year":  2021,
		},
		"flags": map[string]any{
			"policyExpired": "true",
		},
	})}
	c := NewClientWithConn(conn)

	p, err := c.Extract(context.Background(), "user-1", "quiero renovar GPC123456")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if conn.gotMethod != extractMethod {
		t.Fatalf("wrong method: %s", conn.gotMethod)
	}
	req := conn.gotReq.AsMap()
	if req["session_id"] != "user-1" || req["message"] != "quiero renovar GPC123456" {
		t.Fatalf("wrong request payload: %v", req)
	}

	if p.Intent != "RenovatePolicy" {
		t.Fatalf("wrong intent: %s", p.Intent)
	}
	if p.Entities["policy_number"] != "GPC123456" {
		t.Fatalf("policy number missing: %v", p.Entities)
	}
	if p.Entities["vehicle_year"] != "2021" {
		t.Fatalf("numeric entity not stringified: %v", p.Entities)
	}
	if !p.Flags["policyExpired"] {
		t.Fatalf("truthy string flag not coerced: %v", p.Flags)
	}
}

func TestClientExtractPropagatesRPCError(t *testing.T) {
	c := NewClientWithConn(&fakeConn{err: errors.New("unavailable")})
	if _, err := c.Extract(context.Background(), "user-1", "hola"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParsePerceptToleratesMissingFields(t *testing.T) {
	p := parsePercept(map[string]any{})
	if p.Intent != "" {
		t.Fatalf("unexpected intent: %s", p.Intent)
	}
	if p.Entities == nil || p.Flags == nil {
		t.Fatal("maps must be initialized")
	}
}
