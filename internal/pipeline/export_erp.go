package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"pointake/internal"
	"pointake/internal/config"
)

const missingField = "MISSING"

func BuildERPOrder(cfg config.Config, res internal.OrderResult) internal.ERPOrder {
	info := res.CompanyInfo
	ship := parseShippingAddress(info.ShippingAddress)

	header := internal.ERPOrderHeader{
		OpenOrder:   true,
		CustNum:     missingField,
		PONum:       orMissing(info.CustomerPONumber),
		EntryPerson: cfg.ERPEntryPerson,
		ShipViaCode: mapShipVia(info.ShippingMethod),
		OrderDate:   formatOrderDate(info.PODate),
		UseOTS:      true,
		OTSName:     orMissing(ship.Name),
		OTSAddress1: orMissing(ship.Address1),
		OTSCity:     orMissing(ship.City),
		OTSState:    orMissing(ship.State),
		OTSZip:      orMissing(ship.Zip),
		PayFlag:     "SHIP",
		RowMod:      "A",
	}
	if info.AccountNumber != nil && strings.TrimSpace(*info.AccountNumber) != "" {
		header.CustNum = *info.AccountNumber
	}

	lines := make([]internal.ERPOrderLine, 0, len(res.LineItems))
	for _, item := range res.LineItems {
		partNum := missingField
		if item.MappingStatus == internal.StatusMapped && item.InternalPartNumber != nil {
			partNum = *item.InternalPartNumber
		}
		qty := missingField
		if item.Quantity > 0 {
			qty = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", item.Quantity), "0"), ".")
		}
		price := missingField
		if item.UnitPrice > 0 {
			price = fmt.Sprintf("%.2f", item.UnitPrice)
		}
		lines = append(lines, internal.ERPOrderLine{
			OpenLine:          true,
			PartNum:           partNum,
			LineDesc:          orMissing(item.Description),
			SellingQuantity:   qty,
			OverridePriceList: true,
			DocUnitPrice:      price,
			RowMod:            "A",
		})
	}

	return internal.ERPOrder{
		DS:                         internal.ERPDataset{OrderHed: []internal.ERPOrderHeader{header}, OrderDtl: lines},
		ContinueProcessingOnError:  true,
		RollbackParentOnChildError: true,
	}
}

func ValidateForExport(res internal.OrderResult) internal.ExportValidation {
	out := internal.ExportValidation{IsValid: true}

	info := res.CompanyInfo
	switch {
	case info.CustomerMatchStatus != internal.CustomerMatched:
		out.IsValid = false
		out.Errors = append(out.Errors, "customer not matched")
	case info.AccountNumber == nil || strings.TrimSpace(*info.AccountNumber) == "":
		out.IsValid = false
		out.Errors = append(out.Errors, "customer account number is empty")
	default:
		out.CustomerValid = true
	}

	for i, item := range res.LineItems {
		lv := internal.LineValidation{LineNumber: i + 1, IsValid: true}
		if item.MappingStatus != internal.StatusMapped {
			lv.IsValid = false
			lv.Errors = append(lv.Errors, "part not mapped")
		}
		if item.InternalPartNumber == nil || strings.TrimSpace(*item.InternalPartNumber) == "" {
			lv.IsValid = false
			lv.Errors = append(lv.Errors, "no internal part number assigned")
		}
		if !lv.IsValid {
			out.IsValid = false
		}
		out.Lines = append(out.Lines, lv)
	}

	return out
}

type shippingAddress struct {
	Name     string
	Address1 string
	City     string
	State    string
	Zip      string
}

var (
	reCityStateZip      = regexp.MustCompile(`^(.+),\s*([A-Z]{2})\.?\s+(\d{5}(?:-\d{4})?)(?:\s+\d+)?$`)
	reCityStateZipSpace = regexp.MustCompile(`^(.+)\s+([A-Z]{2})\.?\s+(\d{5}(?:-\d{4})?)(?:\s+\d+)?$`)
)

func parseShippingAddress(address string) shippingAddress {
	var out shippingAddress

	var lines []string
	for _, line := range strings.Split(address, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return out
	}

	cityLineIndex := -1
	for i, line := range lines {
		m := reCityStateZip.FindStringSubmatch(line)
		if m == nil {
			m = reCityStateZipSpace.FindStringSubmatch(line)
		}
		if m != nil {
			out.City = strings.TrimSpace(m[1])
			out.State = m[2]
			out.Zip = m[3]
			cityLineIndex = i
			break
		}
	}

	out.Name = lines[0]
	if len(lines) >= 2 && cityLineIndex != 1 {
		out.Address1 = lines[1]
	}

	return out
}

var orderDateLayouts = []string{"01/02/2006", "2006-01-02", "01-02-2006", "2006/01/02"}

func formatOrderDate(poDate string) string {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(poDate)); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func mapShipVia(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch {
	case m == "":
		return "INVO"
	case strings.Contains(m, "SAME DAY") || strings.Contains(m, "SAME-DAY"):
		return "SDAY"
	case strings.Contains(m, "2ND DAY") || strings.Contains(m, "2-DAY") || strings.Contains(m, "SECOND DAY"):
		return "2DAY"
	case strings.Contains(m, "OVERNIGHT") || strings.Contains(m, "NEXT DAY") || strings.Contains(m, "1 DAY"):
		return "OVNT"
	case strings.Contains(m, "GROUND"):
		return "GRND"
	case strings.Contains(m, "FEDEX"):
		return "FEDX"
	case strings.Contains(m, "UPS"):
		return "UPS"
	case strings.Contains(m, "USPS") || strings.Contains(m, "POSTAL"):
		return "USPS"
	case strings.Contains(m, "FREIGHT"):
		return "FRGT"
	default:
		return "GRND"
	}
}

func orMissing(v string) string {
	if strings.TrimSpace(v) == "" {
		return missingField
	}
	return v
}
