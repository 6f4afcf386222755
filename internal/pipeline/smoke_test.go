package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"pointake/internal"
	"pointake/internal/refstore"
	"pointake/internal/storage"
)

const sampleOrderJSON = `{
  "company_info": {
    "company_name": "NAK Construction",
    "billing_company_name": "NAK Construction Services LLC",
    "shipping_address": "NAK Construction Services\n123 Main St\nBuffalo, NY 14201",
    "customer_po_number": "PO-123",
    "po_date": "08/30/2026",
    "shipping_method": "UPS Ground"
  },
  "line_items": [
    {"external_part_number": "ZTIP-107-D73", "description": "CUTTING TIP", "quantity": 4, "unit_price": 12.5},
    {"external_part_number": "AB-100X", "description": "CUTTING TORCH HANDLE", "quantity": "2", "unit_price": "$45.00"},
    {"external_part_number": "", "description": "Shipping & Handling", "quantity": 1, "unit_price": 15}
  ]
}`

func TestSmokeOrderToExports(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.UpsertParts([]internal.Part{
		{InternalPartNumber: "ZTIP107D73", Description: "CUTTING TIP"},
		{InternalPartNumber: "AB100", Description: "CUTTING TORCH HANDLE"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertCustomers([]internal.Customer{
		{AccountNumber: "781", CompanyName: "NAK CONSTRUCTION SERVICES LLC", City: "Buffalo", State: "NY"},
	}); err != nil {
		t.Fatal(err)
	}

	orderPath := filepath.Join(tmp, "po_123.json")
	if err := os.WriteFile(orderPath, []byte(sampleOrderJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	store := refstore.NewStore()
	proc := NewProcessingService(db, testConfig(), store)
	if err := proc.RefreshSnapshot(); err != nil {
		t.Fatal(err)
	}

	orderID, res, err := proc.ProcessFile(orderPath)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalParts != 2 || res.PartsMapped != 1 || res.PartsManualReview != 1 {
		t.Fatalf("aggregates: %+v", res)
	}
	if !res.CustomerMatched || !res.RequiresManualReview {
		t.Fatalf("flags: %+v", res)
	}

	if _, _, err := proc.ProcessFile(orderPath); err == nil {
		t.Fatal("expected duplicate sourceRef error")
	}

	stored, err := db.GetOrderResult(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || stored.PartsMapped != res.PartsMapped || len(stored.LineItems) != 2 {
		t.Fatalf("stored: %+v", stored)
	}

	corrected, err := proc.CorrectPart(orderID, 2, "AB100")
	if err != nil {
		t.Fatal(err)
	}
	if corrected.PartsMapped != 2 || corrected.RequiresManualReview {
		t.Fatalf("corrected: %+v", corrected)
	}

	erpPath := filepath.Join(tmp, "out", "order.json")
	if err := proc.ExportERP(orderID, erpPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(erpPath); err != nil {
		t.Fatal(err)
	}
	row, err := db.GetOrder(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.Status != "exported" {
		t.Fatalf("order row: %+v", row)
	}

	if n, err := proc.ExportPending(10); err != nil || n != 0 {
		t.Fatalf("pending export: n=%d err=%v", n, err)
	}

	reviewPath := filepath.Join(tmp, "out", "review.xlsx")
	if err := proc.ExportReview(orderID, reviewPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(reviewPath); err != nil {
		t.Fatal(err)
	}
}
