package google

import (
	"context"
	"strings"
	"testing"
)

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), "  ", "Extracto", "Movimientos"); err == nil {
		t.Fatalf("expected an error without a spreadsheet id")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "", "")
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected a credentials error, got %v", err)
	}
}
