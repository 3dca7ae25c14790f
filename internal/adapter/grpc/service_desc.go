package grpc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "wealthflow.dashboard.v1.Dashboard"

// DashboardServer is the server API of the Dashboard service.
// Every request and response is a google.protobuf.Struct.
type DashboardServer interface {
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGoals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Contribute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListHoldings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateHolding(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteHolding(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListNotifications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkNotificationRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkAllNotificationsRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteNotification(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearNotifications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSubscription(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangePlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartTrial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPreferences(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type rpc func(DashboardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call rpc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Dashboard service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		method("GetDashboard", DashboardServer.GetDashboard),
		method("ListTransactions", DashboardServer.ListTransactions),
		method("CreateTransaction", DashboardServer.CreateTransaction),
		method("UpdateTransaction", DashboardServer.UpdateTransaction),
		method("DeleteTransaction", DashboardServer.DeleteTransaction),
		method("ListGoals", DashboardServer.ListGoals),
		method("CreateGoal", DashboardServer.CreateGoal),
		method("Contribute", DashboardServer.Contribute),
		method("DeleteGoal", DashboardServer.DeleteGoal),
		method("ListHoldings", DashboardServer.ListHoldings),
		method("CreateHolding", DashboardServer.CreateHolding),
		method("DeleteHolding", DashboardServer.DeleteHolding),
		method("ListNotifications", DashboardServer.ListNotifications),
		method("MarkNotificationRead", DashboardServer.MarkNotificationRead),
		method("MarkAllNotificationsRead", DashboardServer.MarkAllNotificationsRead),
		method("DeleteNotification", DashboardServer.DeleteNotification),
		method("ClearNotifications", DashboardServer.ClearNotifications),
		method("GetSubscription", DashboardServer.GetSubscription),
		method("ChangePlan", DashboardServer.ChangePlan),
		method("StartTrial", DashboardServer.StartTrial),
		method("SetPreferences", DashboardServer.SetPreferences),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthflow/dashboard/v1/dashboard.proto",
}

// Serializer runs store operations one at a time. RPC handlers and deferred
// orchestrator tasks share it.
type Serializer struct {
	mu sync.Mutex
}

// Do runs fn while holding the lock
func (s *Serializer) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Schedule runs task after delay on its own goroutine, under the lock.
// It matches orchestrator.Scheduler.
func (s *Serializer) Schedule(delay time.Duration, task func()) {
	time.AfterFunc(delay, func() { s.Do(task) })
}

// decode copies a request struct into v through its JSON form
func decode(req *structpb.Struct, v interface{}) error {
	if req == nil {
		return nil
	}
	b, err := protojson.Marshal(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encode converts a JSON-serializable map into a response struct
func encode(fields map[string]interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}
