package auth_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tasteparadise/pos/internal/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	staffID := uuid.New()
	role := "CASHIER"

	token, err := auth.GenerateToken(secret, staffID, "Ravi", role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.StaffID != staffID {
		t.Errorf("staff ID: got %v, want %v", claims.StaffID, staffID)
	}
	if claims.Name != "Ravi" {
		t.Errorf("name: got %v, want Ravi", claims.Name)
	}
	if claims.Role != role {
		t.Errorf("role: got %v, want %v", claims.Role, role)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", uuid.New(), "Ravi", "CASHIER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestRefreshToken(t *testing.T) {
	staffID := uuid.New()
	token, err := auth.GenerateRefreshToken("secret", staffID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	got, err := auth.ValidateRefreshToken("secret", token)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if got != staffID {
		t.Errorf("staff ID: got %v, want %v", got, staffID)
	}

	if _, err := auth.ValidateRefreshToken("other", token); err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestClaims_CheckStaff(t *testing.T) {
	tests := []struct {
		name    string
		claims  auth.Claims
		wantErr bool
	}{
		{"manager", auth.Claims{StaffID: uuid.New(), Role: "MANAGER"}, false},
		{"kitchen", auth.Claims{StaffID: uuid.New(), Role: "KITCHEN"}, false},
		{"no staff id", auth.Claims{Role: "CASHIER"}, true},
		{"unknown role", auth.Claims{StaffID: uuid.New(), Role: "OWNER"}, true},
		{"empty role", auth.Claims{StaffID: uuid.New()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.claims.CheckStaff()
			if tt.wantErr != (err != nil) {
				t.Fatalf("got %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, auth.ErrNotStaff) {
				t.Errorf("got %v, want ErrNotStaff", err)
			}
		})
	}
}
