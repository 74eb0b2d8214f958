package service

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"orgnotify/internal/models"
)

const testTenantID = "7b0e2f64-3c1d-4a8e-9f27-5d6c8a9b0e12"

// assertNoError checks that no error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Expected no error but got: %v", err)
	}
}

// assertEqual checks if two values are equal
func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("Expected %v but got %v", want, got)
	}
}

// assertFloatEqual checks two floats are equal within rounding noise
func assertFloatEqual(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected %v but got %v", want, got)
	}
}

// assertContains checks if string contains substring
func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected %q to contain %q", haystack, needle)
	}
}

// stringPtr returns a pointer to the given string
func stringPtr(s string) *string {
	return &s
}

// int64Ptr returns a pointer to the given int64
func int64Ptr(i int64) *int64 {
	return &i
}

// newTestConfig creates a usable provider config
func newTestConfig() *models.ProviderConfig {
	return &models.ProviderConfig{
		ID:        1,
		TenantID:  testTenantID,
		APIKey:    "test-api-key",
		PartnerID: "10001",
		SenderID:  "TESTSENDER",
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// newTestRecipient creates a recipient with a normalized phone
func newTestRecipient(id int64) *models.Recipient {
	return &models.Recipient{
		ID:        id,
		MessageID: 1,
		Phone:     fmt.Sprintf("2547001%05d", id),
		Name:      stringPtr(fmt.Sprintf("Recipient %d", id)),
		Body:      "hello",
		Status:    models.RecipientStatusPending,
		CreatedAt: time.Now(),
	}
}

// newTestRecipientInputs creates raw send inputs with local-format phones
func newTestRecipientInputs(count int) []RecipientInput {
	inputs := make([]RecipientInput, count)
	for i := 0; i < count; i++ {
		inputs[i] = RecipientInput{
			Phone: fmt.Sprintf("07001%05d", i+1),
			Name:  stringPtr(fmt.Sprintf("Recipient %d", i+1)),
		}
	}
	return inputs
}

// newTestMember creates an active directory record
func newTestMember(id string, first, last string) *models.Member {
	return &models.Member{
		ID:        id,
		TenantID:  testTenantID,
		FirstName: &first,
		LastName:  &last,
		Phone:     "254700100001",
		Active:    true,
	}
}
