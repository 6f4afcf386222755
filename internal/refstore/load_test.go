package refstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadPartsCSV(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "parts.csv")
	blob := "internal_part_number,description\nZTIP107D73,CUTTING TIP\nAB100,CUTTING TORCH HANDLE\n,orphan description\nWH200,\n"
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	parts, err := LoadPartsCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 3 {
		t.Fatalf("len=%d parts=%+v", len(parts), parts)
	}
	if parts[0].InternalPartNumber != "ZTIP107D73" || parts[0].Description != "CUTTING TIP" {
		t.Fatalf("first part: %+v", parts[0])
	}
	if parts[2].InternalPartNumber != "WH200" || parts[2].Description != "" {
		t.Fatalf("empty description should survive: %+v", parts[2])
	}
}

func TestLoadCustomersXLSX(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "customers.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Account Number", "Company Name", "Address", "City", "State", "Zip", "Country"},
		{"781", "NAK CONSTRUCTION SERVICES LLC", "123 Main St", "Buffalo", "NY", "14201", "USA"},
		{"", "No Account Co", "", "", "", "", ""},
		{"900", "", "", "", "", "", ""},
		{"555", "BUFFALO WELDING SUPPLY", "", "Buffalo", "NY", "", ""},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	customers, err := LoadCustomersXLSX(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(customers) != 2 {
		t.Fatalf("len=%d customers=%+v", len(customers), customers)
	}
	first := customers[0]
	if first.AccountNumber != "781" || first.CompanyName != "NAK CONSTRUCTION SERVICES LLC" {
		t.Fatalf("first customer: %+v", first)
	}
	if first.City != "Buffalo" || first.State != "NY" || first.PostalCode != "14201" {
		t.Fatalf("address columns not mapped: %+v", first)
	}
}
