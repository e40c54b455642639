package config

import "testing"

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed validation: %v", err)
	}
}

func TestValidate_MissingDefaultTimeout(t *testing.T) {
	cfg := Default()
	cfg.DefaultTimeout = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty default_timeout")
	}
}

func TestValidate_ReceiverWorkersOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Receiver.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for workers=0")
	}

	cfg = Default()
	cfg.Receiver.Workers = 257
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for workers=257")
	}
}

func TestValidate_AffinityRequiresExpressionWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Affinity.Enabled = true
	cfg.Affinity.Expression = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for enabled affinity with empty expression")
	}
}

func TestValidate_CredentialRequiresHashWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Credential.Enabled = true
	cfg.Credential.HashedSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for enabled credential check with empty hash")
	}
}

func TestValidate_AuditRequiresPathWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Audit.Enabled = true
	cfg.Audit.DatabasePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for enabled audit with empty database_path")
	}
}
