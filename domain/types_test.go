package domain_test

import (
	"testing"

	"github.com/goliatone/go-blockbuilder/domain"
)

func TestStatusValid(t *testing.T) {
	for _, status := range domain.Statuses() {
		if !status.Valid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	for _, status := range []domain.Status{"", "pending", "published"} {
		if status.Valid() {
			t.Fatalf("expected %q to be invalid", status)
		}
	}
}
