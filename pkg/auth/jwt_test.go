package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stablebook/pkg/model"
)

const testSecret = "test-secret-0123456789"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret)

	token, err := v.Sign("665f1c2b9a1e4a0012345678", model.RoleRider, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	caller, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if caller.UserID != "665f1c2b9a1e4a0012345678" || !caller.IsRider() {
		t.Errorf("unexpected caller: %+v", caller)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)

	expired, _ := v.Sign("u1", model.RoleRider, -time.Hour)
	otherKey, _ := NewVerifier("another-secret-987654321").Sign("u1", model.RoleRider, time.Hour)
	unknownRole, _ := v.Sign("u1", "horse", time.Hour)
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             model.RoleRider,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte(testSecret))
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, ErrInvalidToken},
		{"wrong key", otherKey, ErrInvalidToken},
		{"unknown role", unknownRole, ErrMissingRole},
		{"missing expiry", noExpiry, ErrInvalidToken},
		{"none algorithm", noneAlg, ErrInvalidToken},
		{"garbage", "not-a-token", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCallerContext(t *testing.T) {
	if CallerFromContext(context.Background()) != nil {
		t.Errorf("anonymous context should yield nil caller")
	}

	ctx := WithCaller(context.Background(), &Caller{UserID: "a1", Role: model.RoleAdmin})
	caller := CallerFromContext(ctx)
	if caller == nil || !caller.IsAdmin() || caller.IsRider() {
		t.Errorf("unexpected caller %+v", caller)
	}

	var nilCaller *Caller
	if nilCaller.IsAdmin() || nilCaller.IsRider() {
		t.Errorf("nil caller must have no role")
	}
}
