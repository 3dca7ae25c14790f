package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type identityKey struct{}

// WithIdentity returns ctx carrying the caller identity
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFromContext returns the caller identity, "" when anonymous.
func IdentityFromContext(ctx context.Context) string {
	id, _ := ctx.Value(identityKey{}).(string)
	return id
}

// AuthInterceptor returns a gRPC unary server interceptor that resolves the
// caller identity from an "authorization: Bearer <jwt>" header.
// A missing header means an anonymous caller. A token that is not a valid
// HS256 JWT signed with secret, or that has no subject, is rejected with
// status.Unauthenticated. The token subject is the identity.
func AuthInterceptor(secret []byte) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		var authHeaders []string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			authHeaders = md.Get("authorization")
		}
		if len(authHeaders) == 0 {
			return handler(WithIdentity(ctx, ""), req)
		}

		subject, err := verify(authHeaders[0], secret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		return handler(WithIdentity(ctx, subject), req)
	}
}

func verify(header string, secret []byte) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errors.New("expected bearer scheme")
	}
	if len(secret) == 0 {
		return "", errors.New("token verification is not configured")
	}
	token, err := jwt.Parse(strings.TrimSpace(raw), func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}
