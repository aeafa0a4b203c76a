package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	dir := t.TempDir()
	privPath = filepath.Join(dir, "jwt_private.pem")
	pubPath = filepath.Join(dir, "jwt_public.pem")

	privPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(privPath, privPem, 0600); err != nil {
		t.Fatalf("write private key: %v", err)
	}

	pubDer, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPem := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer})
	if err := os.WriteFile(pubPath, pubPem, 0600); err != nil {
		t.Fatalf("write public key: %v", err)
	}

	return privPath, pubPath
}

func TestTokenPairRoundTrip(t *testing.T) {
	privPath, pubPath := writeTestKeys(t)
	mgr, err := NewJWTManager(privPath, pubPath, "lokal")
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	pair, err := mgr.GenerateTokenPair("user-1", 15*time.Minute, 24*time.Hour, 3, "local", []string{"user"})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	claims, err := mgr.VerifyToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken(access): %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Errorf("sub = %v", claims["sub"])
	}
	if claims["typ"] != string(AccessToken) {
		t.Errorf("typ = %v; want access", claims["typ"])
	}
	if int(claims["ver"].(float64)) != 3 {
		t.Errorf("ver = %v; want 3", claims["ver"])
	}

	refreshClaims, err := mgr.VerifyToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyToken(refresh): %v", err)
	}
	if refreshClaims["typ"] != string(RefreshToken) {
		t.Errorf("refresh typ = %v", refreshClaims["typ"])
	}
	// the pair's JTI must identify the refresh token so rotation can find it
	if refreshClaims["jti"] != pair.JTI {
		t.Errorf("pair JTI %q does not match refresh token jti %v", pair.JTI, refreshClaims["jti"])
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	privPath, pubPath := writeTestKeys(t)
	mgr, err := NewJWTManager(privPath, pubPath, "lokal")
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	if _, err := mgr.VerifyToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestHashTokenIsStableHex(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d; want 64 hex chars", len(a))
	}
	if a == HashToken("other-token") {
		t.Error("distinct tokens must hash differently")
	}
}
