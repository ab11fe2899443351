package utils_test

import (
	"testing"

	"watchtrade_backend/pkg/utils"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	partnerID := "d2f1c9a0-0000-0000-0000-000000000001"
	token, err := utils.GenerateAccessToken(42, "maria", "investor", &partnerID)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "maria" {
		t.Errorf("Username = %q, want maria", claims.Username)
	}
	if claims.Role != "investor" {
		t.Errorf("Role = %q, want investor", claims.Role)
	}
	if claims.PartnerID == nil || *claims.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %s", claims.PartnerID, partnerID)
	}
}

func TestAccessTokenWithoutPartner(t *testing.T) {
	token, err := utils.GenerateAccessToken(7, "boss", "director", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.PartnerID != nil {
		t.Errorf("PartnerID = %v, want nil", claims.PartnerID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := utils.ValidateToken("not.a.token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}

func TestRefreshTokenCarriesUserID(t *testing.T) {
	token, err := utils.GenerateRefreshToken(99)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 99 {
		t.Errorf("UserID = %d, want 99", claims.UserID)
	}
}
