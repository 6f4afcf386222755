package internal

type Part struct {
	InternalPartNumber string
	Description        string
}

type Customer struct {
	AccountNumber string
	CompanyName   string
	Address       string
	City          string
	State         string
	PostalCode    string
	Country       string
}

type MappingStatus string

type CustomerMatchStatus string

type MatchReason string

const (
	StatusMapped       MappingStatus = "mapped"
	StatusNotFound     MappingStatus = "not_found"
	StatusManualReview MappingStatus = "manual_review"

	CustomerMatched      CustomerMatchStatus = "matched"
	CustomerNotFound     CustomerMatchStatus = "not_found"
	CustomerManualReview CustomerMatchStatus = "manual_review"

	ReasonExact MatchReason = "EXACT"
	ReasonFuzzy MatchReason = "FUZZY"
	ReasonNone  MatchReason = "NONE"
)

type PartCandidate struct {
	InternalPartNumber string `json:"internal_part_number"`
	Description        string `json:"description"`
	Confidence         int    `json:"confidence"`
}

type LineItem struct {
	ExternalPartNumber string  `json:"external_part_number"`
	Description        string  `json:"description"`
	Quantity           float64 `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`

	InternalPartNumber *string         `json:"internal_part_number"`
	MappingStatus      MappingStatus   `json:"mapping_status"`
	MappingConfidence  int             `json:"mapping_confidence"`
	MatchReason        MatchReason     `json:"match_reason"`
	Candidates         []PartCandidate `json:"candidate_suggestions,omitempty"`
}

type CompanyInfo struct {
	CompanyName        string `json:"company_name"`
	BillingCompanyName string `json:"billing_company_name"`
	BillingAddress     string `json:"billing_address"`
	ShippingAddress    string `json:"shipping_address"`
	CustomerPONumber   string `json:"customer_po_number"`
	PODate             string `json:"po_date"`
	ShippingMethod     string `json:"shipping_method"`

	AccountNumber           *string             `json:"account_number"`
	CustomerMatchStatus     CustomerMatchStatus `json:"customer_match_status"`
	CustomerMatchConfidence int                 `json:"customer_match_confidence"`
}

type OrderResult struct {
	CompanyInfo CompanyInfo `json:"company_info"`
	LineItems   []LineItem  `json:"line_items"`

	TotalParts           int     `json:"total_parts"`
	PartsMapped          int     `json:"parts_mapped"`
	PartsNotFound        int     `json:"parts_not_found"`
	PartsManualReview    int     `json:"parts_manual_review"`
	MappingSuccessRate   float64 `json:"mapping_success_rate"`
	CustomerMatched      bool    `json:"customer_matched"`
	RequiresManualReview bool    `json:"requires_manual_review"`
}

type ExtractedOrder struct {
	CompanyInfo ExtractedCompanyInfo `json:"company_info"`
	LineItems   []ExtractedLineItem  `json:"line_items"`
}

type ExtractedCompanyInfo struct {
	CompanyName        string `json:"company_name"`
	BillingCompanyName string `json:"billing_company_name"`
	BillingAddress     string `json:"billing_address"`
	ShippingAddress    string `json:"shipping_address"`
	CustomerPONumber   string `json:"customer_po_number"`
	PODate             string `json:"po_date"`
	ShippingMethod     string `json:"shipping_method"`
}

type ExtractedLineItem struct {
	ExternalPartNumber string `json:"external_part_number"`
	Description        string `json:"description"`
	Quantity           any    `json:"quantity"`
	UnitPrice          any    `json:"unit_price"`
}

type OrderRow struct {
	ID        int
	SourceRef string
	Status    string
	CreatedAt string
}

type ERPOrderHeader struct {
	OpenOrder   bool   `json:"OpenOrder"`
	CustNum     string `json:"CustNum"`
	PONum       string `json:"PONum"`
	EntryPerson string `json:"EntryPerson"`
	ShipViaCode string `json:"ShipViaCode"`
	OrderDate   string `json:"OrderDate"`
	UseOTS      bool   `json:"UseOTS"`
	OTSName     string `json:"OTSName"`
	OTSAddress1 string `json:"OTSAddress1"`
	OTSCity     string `json:"OTSCity"`
	OTSState    string `json:"OTSState"`
	OTSZip      string `json:"OTSZip"`
	PayFlag     string `json:"PayFlag"`
	RowMod      string `json:"RowMod"`
}

type ERPOrderLine struct {
	OpenLine          bool   `json:"OpenLine"`
	PartNum           string `json:"PartNum"`
	LineDesc          string `json:"LineDesc"`
	SellingQuantity   string `json:"SellingQuantity"`
	OverridePriceList bool   `json:"OverridePriceList"`
	DocUnitPrice      string `json:"DocUnitPrice"`
	RowMod            string `json:"RowMod"`
}

type ERPDataset struct {
	OrderHed []ERPOrderHeader `json:"OrderHed"`
	OrderDtl []ERPOrderLine   `json:"OrderDtl"`
}

type ERPOrder struct {
	DS                         ERPDataset `json:"ds"`
	ContinueProcessingOnError  bool       `json:"continueProcessingOnError"`
	RollbackParentOnChildError bool       `json:"rollbackParentOnChildError"`
}

type ExportValidation struct {
	IsValid       bool             `json:"is_valid"`
	CustomerValid bool             `json:"customer_valid"`
	Lines         []LineValidation `json:"lines"`
	Errors        []string         `json:"errors"`
}

type LineValidation struct {
	LineNumber int      `json:"line_number"`
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
}
