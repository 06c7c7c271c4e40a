package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("unexpected default port %q", cfg.Port)
	}
	if cfg.DeliveryFee != 1.50 {
		t.Errorf("unexpected default delivery fee %v", cfg.DeliveryFee)
	}
}

func TestLoadDeliveryFee(t *testing.T) {
	t.Setenv("DELIVERY_FEE", "2.25")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DeliveryFee != 2.25 {
		t.Errorf("unexpected delivery fee %v", cfg.DeliveryFee)
	}
}

func TestLoadRejectsBadFee(t *testing.T) {
	t.Setenv("DELIVERY_FEE", "free")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable fee")
	}

	t.Setenv("DELIVERY_FEE", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative fee")
	}
}
