package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var testSecret = []byte("test-secret-123")

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthInterceptor(t *testing.T) {
	interceptor := AuthInterceptor(testSecret)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	valid := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: future})
	expired := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: past})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "alice"})
	noSubject := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{ExpiresAt: future})
	wrongAlg := signToken(t, jwt.SigningMethodHS512, testSecret, jwt.RegisteredClaims{Subject: "alice"})

	withAuth := func(v string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", v))
	}

	tests := []struct {
		name          string
		ctx           context.Context
		handlerCalled bool
		expectedCode  codes.Code
		expectedID    string
	}{
		{name: "Valid Token", ctx: withAuth("Bearer " + valid), handlerCalled: true, expectedCode: codes.OK, expectedID: "alice"},
		{name: "No Metadata Is Anonymous", ctx: context.Background(), handlerCalled: true, expectedCode: codes.OK},
		{
			name:          "No Authorization Header Is Anonymous",
			ctx:           metadata.NewIncomingContext(context.Background(), metadata.Pairs("other-header", "value")),
			handlerCalled: true,
			expectedCode:  codes.OK,
		},
		{name: "Missing Bearer Scheme", ctx: withAuth(valid), expectedCode: codes.Unauthenticated},
		{name: "Expired Token", ctx: withAuth("Bearer " + expired), expectedCode: codes.Unauthenticated},
		{name: "Wrong Signing Key", ctx: withAuth("Bearer " + wrongKey), expectedCode: codes.Unauthenticated},
		{name: "Missing Subject", ctx: withAuth("Bearer " + noSubject), expectedCode: codes.Unauthenticated},
		{name: "Unexpected Algorithm", ctx: withAuth("Bearer " + wrongAlg), expectedCode: codes.Unauthenticated},
		{name: "Garbage", ctx: withAuth("Bearer not.a.jwt"), expectedCode: codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			seenID := "unset"
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerCalled = true
				seenID = IdentityFromContext(ctx)
				return "success", nil
			}

			info := &grpc.UnaryServerInfo{
				FullMethod: "/test.Service/Method",
			}

			resp, err := interceptor(tt.ctx, "test-request", info, handler)

			assert.Equal(t, tt.handlerCalled, handlerCalled, "handler called status mismatch")

			if tt.expectedCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, "success", resp)
				assert.Equal(t, tt.expectedID, seenID)
				return
			}
			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok, "error should be a gRPC status")
			assert.Equal(t, tt.expectedCode, st.Code())
			assert.Nil(t, resp)
		})
	}
}

func TestAuthInterceptor_NoSecretRejectsTokens(t *testing.T) {
	interceptor := AuthInterceptor(nil)
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "alice"})
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{}, func(context.Context, interface{}) (interface{}, error) {
		return nil, nil
	})

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
