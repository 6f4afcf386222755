package refstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"pointake/internal"
)

func LoadPartsCSV(path string) ([]internal.Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read parts csv: %w", err)
	}

	out := make([]internal.Part, 0, len(records))
	for i, record := range records {
		if len(record) < 1 {
			continue
		}
		number := strings.TrimSpace(record[0])
		if number == "" {
			continue
		}
		if i == 0 && strings.EqualFold(number, "internal_part_number") {
			continue
		}
		description := ""
		if len(record) > 1 {
			description = strings.TrimSpace(record[1])
		}
		out = append(out, internal.Part{InternalPartNumber: number, Description: description})
	}

	return out, nil
}

func LoadCustomersXLSX(path string) ([]internal.Customer, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read customers sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, header := range rows[0] {
		cols[normalizeHeaderName(header)] = i
	}
	get := func(row []string, names ...string) string {
		for _, name := range names {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[idx]); v != "" {
				return v
			}
		}
		return ""
	}

	out := make([]internal.Customer, 0, len(rows)-1)
	for _, row := range rows[1:] {
		customer := internal.Customer{
			AccountNumber: get(row, "account_number", "account", "cust_num"),
			CompanyName:   get(row, "company_name", "company", "name"),
			Address:       get(row, "address", "address1", "street"),
			City:          get(row, "city"),
			State:         get(row, "state", "province"),
			PostalCode:    get(row, "postal_code", "zip", "zip_code"),
			Country:       get(row, "country"),
		}
		if customer.AccountNumber == "" || customer.CompanyName == "" {
			continue
		}
		out = append(out, customer)
	}

	return out, nil
}

func normalizeHeaderName(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
