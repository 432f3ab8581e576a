package integration

import (
	"testing"
)

// TestListProductsPagination verifies the paginated catalog envelope.
func TestListProductsPagination(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpGet(t, baseURL()+"/api/products?page=1&per_page=5")
	requireStatus(t, status, 200)

	items, ok := extractField(data, "data").([]interface{})
	if !ok {
		t.Fatalf("expected a data array, got %T", extractField(data, "data"))
	}
	if len(items) > 5 {
		t.Errorf("page size = %d, want at most 5", len(items))
	}
	if got := extractFloat(t, data, "page"); got != 1 {
		t.Errorf("page = %v, want 1", got)
	}
	if got := extractFloat(t, data, "per_page"); got != 5 {
		t.Errorf("per_page = %v, want 5", got)
	}
	if extractField(data, "total_count") == nil {
		t.Error("expected total_count in the list envelope")
	}
}

// TestGetProductByID fetches a single product and checks its shape.
func TestGetProductByID(t *testing.T) {
	skipIfNotRunning(t)

	productID, price := firstCatalogProduct(t)

	status, data := httpGet(t, baseURL()+"/api/products/"+productID)
	requireStatus(t, status, 200)
	if got := extractString(t, data, "data.id"); got != productID {
		t.Errorf("product id = %q, want %q", got, productID)
	}
	if got := extractFloat(t, data, "data.price"); got != price {
		t.Errorf("product price = %v, want %v", got, price)
	}
	if got := extractString(t, data, "data.slug"); got == "" {
		t.Error("expected a non-empty slug")
	}
}

// TestGetProductErrors covers the malformed and missing cases.
func TestGetProductErrors(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpGet(t, baseURL()+"/api/products/not-a-uuid")
	requireStatus(t, status, 400)

	status, _ = httpGet(t, baseURL()+"/api/products/00000000-0000-4000-8000-000000000000")
	requireStatus(t, status, 404)
}
