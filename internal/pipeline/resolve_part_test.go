package pipeline

import (
	"testing"

	"pointake/internal"
	"pointake/internal/config"
	"pointake/internal/refstore"
)

func testConfig() config.Config {
	cfg, _ := config.Load()
	cfg.MappedThreshold = 90
	cfg.ReviewThreshold = 50
	cfg.AddressBonus = 10
	cfg.CandidateLimit = 3
	cfg.SupplierMarkers = []string{"KOIKE", "ARONSON"}
	cfg.ShippingMarkers = []string{"SHIPPING", "HANDLING", "FREIGHT", "DELIVERY", "S&H", "S & H"}
	return cfg
}

func testSnapshot() *refstore.Snapshot {
	return refstore.BuildSnapshot(
		[]internal.Part{
			{InternalPartNumber: "ZTIP107D73", Description: "CUTTING TIP"},
			{InternalPartNumber: "AB100", Description: "CUTTING TORCH HANDLE"},
			{InternalPartNumber: "WH200", Description: "WELDING HELMET"},
		},
		[]internal.Customer{
			{AccountNumber: "781", CompanyName: "NAK CONSTRUCTION SERVICES LLC", Address: "123 Main St", City: "Buffalo", State: "NY", PostalCode: "14201"},
			{AccountNumber: "555", CompanyName: "BUFFALO WELDING SUPPLY", City: "Buffalo", State: "NY"},
		},
	)
}

func TestResolvePartExactCode(t *testing.T) {
	r := NewPartResolver(testConfig(), testSnapshot())

	res := r.Resolve("ZTIP107D73", "CUTTING TIP")
	if res.Status != internal.StatusMapped || res.Confidence != 100 || res.Reason != internal.ReasonExact {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.InternalPartNumber == nil || *res.InternalPartNumber != "ZTIP107D73" {
		t.Fatalf("part number: %v", res.InternalPartNumber)
	}
}

func TestResolvePartSeparatorInsensitive(t *testing.T) {
	r := NewPartResolver(testConfig(), testSnapshot())

	res := r.Resolve("ZTIP-107-D73", "CUTTING TIP - OXYGEN")
	if res.Status != internal.StatusMapped {
		t.Fatalf("status=%s", res.Status)
	}
	if res.Confidence < 90 {
		t.Fatalf("confidence=%d", res.Confidence)
	}
	if res.InternalPartNumber == nil || *res.InternalPartNumber != "ZTIP107D73" {
		t.Fatalf("part number: %v", res.InternalPartNumber)
	}
}

func TestResolvePartReviewBand(t *testing.T) {
	r := NewPartResolver(testConfig(), testSnapshot())

	res := r.Resolve("AB-100X", "CUTTING TORCH HANDLE")
	if res.Status != internal.StatusManualReview {
		t.Fatalf("status=%s confidence=%d", res.Status, res.Confidence)
	}
	if res.InternalPartNumber != nil {
		t.Fatalf("review line must not carry a part number: %v", *res.InternalPartNumber)
	}
	if res.Confidence < 50 || res.Confidence >= 90 {
		t.Fatalf("confidence out of review band: %d", res.Confidence)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].InternalPartNumber != "AB100" {
		t.Fatalf("candidates: %+v", res.Candidates)
	}
}

func TestResolvePartNotFound(t *testing.T) {
	r := NewPartResolver(testConfig(), testSnapshot())

	res := r.Resolve("XYZ-999", "FLUX CAPACITOR")
	if res.Status != internal.StatusNotFound || res.Reason != internal.ReasonNone {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.InternalPartNumber != nil {
		t.Fatalf("not_found must leave the part number empty")
	}
	if res.Confidence >= 50 {
		t.Fatalf("confidence=%d", res.Confidence)
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("no credible candidates expected: %+v", res.Candidates)
	}
}

func TestResolvePartEmptyCatalog(t *testing.T) {
	r := NewPartResolver(testConfig(), refstore.BuildSnapshot(nil, nil))

	res := r.Resolve("ZTIP107D73", "CUTTING TIP")
	if res.Status != internal.StatusNotFound || res.Confidence != 0 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolvePartTieBreaksDeterministic(t *testing.T) {
	snap := refstore.BuildSnapshot([]internal.Part{
		{InternalPartNumber: "B100", Description: "CUTTING TIP"},
		{InternalPartNumber: "A100", Description: "CUTTING TIP"},
	}, nil)
	r := NewPartResolver(testConfig(), snap)

	for i := 0; i < 20; i++ {
		res := r.Resolve("", "CUTTING TIP")
		if len(res.Candidates) == 0 || res.Candidates[0].InternalPartNumber != "A100" {
			t.Fatalf("run %d: candidates=%+v", i, res.Candidates)
		}
	}
}
