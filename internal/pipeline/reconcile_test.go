package pipeline

import (
	"math"
	"reflect"
	"testing"

	"pointake/internal"
	"pointake/internal/refstore"
)

func testStore() *refstore.Store {
	store := refstore.NewStore()
	store.Publish(testSnapshot())
	return store
}

func TestReconcileMixedOrder(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	company := internal.CompanyInfo{
		CompanyName:        "NAK Construction",
		BillingCompanyName: "NAK Construction Services LLC",
		CustomerPONumber:   "PO-123",
	}
	items := []internal.LineItem{
		{ExternalPartNumber: "ZTIP-107-D73", Description: "CUTTING TIP", Quantity: 4, UnitPrice: 12.5},
		{ExternalPartNumber: "AB100", Description: "CUTTING TORCH HANDLE", Quantity: 1, UnitPrice: 89},
		{ExternalPartNumber: "AB-100X", Description: "CUTTING TORCH HANDLE", Quantity: 2, UnitPrice: 45},
		{Description: "Shipping & Handling", UnitPrice: 15},
	}

	res := r.Reconcile(company, items)

	if res.TotalParts != 3 {
		t.Fatalf("shipping charge should be dropped: total=%d", res.TotalParts)
	}
	if res.PartsMapped != 2 || res.PartsManualReview != 1 || res.PartsNotFound != 0 {
		t.Fatalf("aggregates: %+v", res)
	}
	if math.Abs(res.MappingSuccessRate-2.0/3.0) > 0.001 {
		t.Fatalf("rate=%f", res.MappingSuccessRate)
	}
	if !res.CustomerMatched {
		t.Fatalf("customer: %+v", res.CompanyInfo)
	}
	if res.CompanyInfo.AccountNumber == nil || *res.CompanyInfo.AccountNumber != "781" {
		t.Fatalf("account: %v", res.CompanyInfo.AccountNumber)
	}
	if !res.RequiresManualReview {
		t.Fatal("one review line must flag the order for review")
	}
}

func TestReconcileEmptyOrder(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	res := r.Reconcile(internal.CompanyInfo{CompanyName: "NAK Construction Services LLC"}, nil)
	if res.TotalParts != 0 || res.MappingSuccessRate != 0 {
		t.Fatalf("aggregates: %+v", res)
	}
	if !res.CustomerMatched || res.RequiresManualReview {
		t.Fatalf("empty order with a matched customer needs no review: %+v", res)
	}
}

func TestReconcileUnmatchedCustomerForcesReview(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	items := []internal.LineItem{
		{ExternalPartNumber: "ZTIP107D73", Description: "CUTTING TIP", Quantity: 1, UnitPrice: 10},
	}
	res := r.Reconcile(internal.CompanyInfo{CompanyName: "Acme Co"}, items)
	if res.PartsMapped != 1 {
		t.Fatalf("aggregates: %+v", res)
	}
	if res.CustomerMatched || !res.RequiresManualReview {
		t.Fatalf("unmatched customer must force review: %+v", res)
	}
}

func TestReconcileShippingChargeGate(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	items := []internal.LineItem{
		{ExternalPartNumber: "FRT", Description: "Freight charges", UnitPrice: 25},
		{ExternalPartNumber: "AB100", Description: "SHIPPING BRACKET", Quantity: 1, UnitPrice: 5},
	}
	res := r.Reconcile(internal.CompanyInfo{CompanyName: "NAK Construction Services LLC"}, items)

	if res.TotalParts != 1 {
		t.Fatalf("word-only freight line should be dropped: %+v", res.LineItems)
	}
	kept := res.LineItems[0]
	if kept.ExternalPartNumber != "AB100" || kept.MappingStatus != internal.StatusMapped {
		t.Fatalf("real part with a shipping word in its description must survive: %+v", kept)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	company := internal.CompanyInfo{CompanyName: "NAK Construction Services LLC"}
	items := []internal.LineItem{
		{ExternalPartNumber: "AB-100X", Description: "CUTTING TORCH HANDLE", Quantity: 2, UnitPrice: 45},
	}

	first := r.Reconcile(company, items)
	second := r.Reconcile(company, items)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconciliation not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestReconcileExactMatchStableUnderCatalogGrowth(t *testing.T) {
	small := refstore.NewStore()
	small.Publish(refstore.BuildSnapshot(
		[]internal.Part{{InternalPartNumber: "ZTIP107D73", Description: "CUTTING TIP"}},
		[]internal.Customer{{AccountNumber: "781", CompanyName: "NAK CONSTRUCTION SERVICES LLC"}},
	))

	company := internal.CompanyInfo{CompanyName: "NAK Construction Services LLC"}
	items := []internal.LineItem{
		{ExternalPartNumber: "ZTIP-107-D73", Description: "CUTTING TIP", Quantity: 1, UnitPrice: 10},
	}

	base := NewReconciler(testConfig(), small).Reconcile(company, items)
	grown := NewReconciler(testConfig(), testStore()).Reconcile(company, items)

	if base.LineItems[0].MappingStatus != internal.StatusMapped || grown.LineItems[0].MappingStatus != internal.StatusMapped {
		t.Fatalf("exact match lost: %+v vs %+v", base.LineItems[0], grown.LineItems[0])
	}
	if *base.LineItems[0].InternalPartNumber != *grown.LineItems[0].InternalPartNumber {
		t.Fatal("adding unrelated parts changed an exact match")
	}
}

func TestCorrectLine(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	items := []internal.LineItem{
		{ExternalPartNumber: "ZTIP107D73", Description: "CUTTING TIP", Quantity: 1, UnitPrice: 10},
		{ExternalPartNumber: "AB-100X", Description: "CUTTING TORCH HANDLE", Quantity: 2, UnitPrice: 45},
	}
	res := r.Reconcile(internal.CompanyInfo{CompanyName: "NAK Construction Services LLC"}, items)
	if !res.RequiresManualReview {
		t.Fatalf("precondition: %+v", res)
	}

	corrected, err := CorrectLine(res, 1, "AB100")
	if err != nil {
		t.Fatal(err)
	}
	line := corrected.LineItems[1]
	if line.MappingStatus != internal.StatusMapped || line.MappingConfidence != 100 {
		t.Fatalf("corrected line: %+v", line)
	}
	if line.InternalPartNumber == nil || *line.InternalPartNumber != "AB100" {
		t.Fatalf("part number: %v", line.InternalPartNumber)
	}
	if corrected.PartsMapped != 2 || corrected.RequiresManualReview {
		t.Fatalf("aggregates not re-derived: %+v", corrected)
	}

	if res.LineItems[1].MappingStatus != internal.StatusManualReview {
		t.Fatalf("input mutated: %+v", res.LineItems[1])
	}

	if _, err := CorrectLine(res, 5, "AB100"); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if _, err := CorrectLine(res, 1, "  "); err == nil {
		t.Fatal("expected error for empty part number")
	}
}

func TestCorrectCustomer(t *testing.T) {
	r := NewReconciler(testConfig(), testStore())

	items := []internal.LineItem{
		{ExternalPartNumber: "ZTIP107D73", Description: "CUTTING TIP", Quantity: 1, UnitPrice: 10},
	}
	res := r.Reconcile(internal.CompanyInfo{CompanyName: "Acme Co"}, items)
	if res.CustomerMatched {
		t.Fatalf("precondition: %+v", res)
	}

	corrected, err := CorrectCustomer(res, "781")
	if err != nil {
		t.Fatal(err)
	}
	if !corrected.CustomerMatched || corrected.CompanyInfo.CustomerMatchConfidence != 100 {
		t.Fatalf("corrected: %+v", corrected.CompanyInfo)
	}
	if corrected.RequiresManualReview {
		t.Fatalf("all mapped plus matched customer: %+v", corrected)
	}
	if res.CustomerMatched {
		t.Fatal("input mutated")
	}

	if _, err := CorrectCustomer(res, ""); err == nil {
		t.Fatal("expected error for empty account")
	}
}

func TestFromExtracted(t *testing.T) {
	company, items := FromExtracted(internal.ExtractedOrder{
		CompanyInfo: internal.ExtractedCompanyInfo{CompanyName: " NAK Construction ", CustomerPONumber: "PO-1 "},
		LineItems: []internal.ExtractedLineItem{
			{ExternalPartNumber: " AB100 ", Description: "Handle", Quantity: "2", UnitPrice: 44.5},
			{ExternalPartNumber: "X", Description: "Noisy", Quantity: "1,000", UnitPrice: "$1,234.56"},
		},
	})

	if company.CompanyName != "NAK Construction" || company.CustomerPONumber != "PO-1" {
		t.Fatalf("company: %+v", company)
	}
	if items[0].ExternalPartNumber != "AB100" || items[0].Quantity != 2 || items[0].UnitPrice != 44.5 {
		t.Fatalf("first item: %+v", items[0])
	}
	if items[1].Quantity != 1000 || items[1].UnitPrice != 1234.56 {
		t.Fatalf("noisy numbers: %+v", items[1])
	}
}
