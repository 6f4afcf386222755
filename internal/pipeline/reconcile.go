package pipeline

import (
	"fmt"
	"strings"

	"pointake/internal"
	"pointake/internal/config"
	"pointake/internal/refstore"
	"pointake/internal/util"
)

type Reconciler struct {
	cfg   config.Config
	store *refstore.Store
}

func NewReconciler(cfg config.Config, store *refstore.Store) *Reconciler {
	return &Reconciler{cfg: cfg, store: store}
}

func (r *Reconciler) Reconcile(company internal.CompanyInfo, items []internal.LineItem) internal.OrderResult {
	snap := r.store.Acquire()

	customers := NewCustomerResolver(r.cfg, snap)
	parts := NewPartResolver(r.cfg, snap)

	lookupName := company.BillingCompanyName
	if strings.TrimSpace(lookupName) == "" {
		lookupName = company.CompanyName
	}
	address := company.BillingAddress
	if strings.TrimSpace(address) == "" {
		address = company.ShippingAddress
	}

	cres := customers.Resolve(lookupName, address)
	company.AccountNumber = cres.AccountNumber
	company.CustomerMatchStatus = cres.Status
	company.CustomerMatchConfidence = cres.Confidence

	result := internal.OrderResult{
		CompanyInfo: company,
		LineItems:   make([]internal.LineItem, 0, len(items)),
	}

	for _, item := range items {
		if r.isShippingCharge(item) {
			continue
		}
		pres := parts.Resolve(item.ExternalPartNumber, item.Description)
		item.InternalPartNumber = pres.InternalPartNumber
		item.MappingStatus = pres.Status
		item.MappingConfidence = pres.Confidence
		item.MatchReason = pres.Reason
		item.Candidates = pres.Candidates
		result.LineItems = append(result.LineItems, item)
	}

	finalize(&result)
	return result
}

func CorrectLine(res internal.OrderResult, index int, internalPartNumber string) (internal.OrderResult, error) {
	if index < 0 || index >= len(res.LineItems) {
		return res, fmt.Errorf("line index out of range: %d", index)
	}
	if strings.TrimSpace(internalPartNumber) == "" {
		return res, fmt.Errorf("internal part number is required")
	}

	out := cloneResult(res)
	line := &out.LineItems[index]
	line.InternalPartNumber = util.StringPtr(internalPartNumber)
	line.MappingStatus = internal.StatusMapped
	line.MappingConfidence = 100
	line.Candidates = nil
	finalize(&out)
	return out, nil
}

func CorrectCustomer(res internal.OrderResult, accountNumber string) (internal.OrderResult, error) {
	if strings.TrimSpace(accountNumber) == "" {
		return res, fmt.Errorf("account number is required")
	}

	out := cloneResult(res)
	out.CompanyInfo.AccountNumber = util.StringPtr(accountNumber)
	out.CompanyInfo.CustomerMatchStatus = internal.CustomerMatched
	out.CompanyInfo.CustomerMatchConfidence = 100
	finalize(&out)
	return out, nil
}

func finalize(res *internal.OrderResult) {
	res.TotalParts = len(res.LineItems)
	res.PartsMapped = 0
	res.PartsNotFound = 0
	res.PartsManualReview = 0
	for _, line := range res.LineItems {
		switch line.MappingStatus {
		case internal.StatusMapped:
			res.PartsMapped++
		case internal.StatusNotFound:
			res.PartsNotFound++
		case internal.StatusManualReview:
			res.PartsManualReview++
		}
	}

	if res.TotalParts > 0 {
		res.MappingSuccessRate = float64(res.PartsMapped) / float64(res.TotalParts)
	} else {
		res.MappingSuccessRate = 0
	}

	res.CustomerMatched = res.CompanyInfo.CustomerMatchStatus == internal.CustomerMatched
	res.RequiresManualReview = !res.CustomerMatched || res.PartsMapped != res.TotalParts
}

func cloneResult(res internal.OrderResult) internal.OrderResult {
	out := res
	out.LineItems = make([]internal.LineItem, len(res.LineItems))
	copy(out.LineItems, res.LineItems)
	return out
}

func (r *Reconciler) isShippingCharge(item internal.LineItem) bool {
	if util.LooksLikeCode(item.ExternalPartNumber) && item.UnitPrice != 0 {
		return false
	}
	desc := strings.ToUpper(item.Description)
	for _, marker := range r.cfg.ShippingMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

func FromExtracted(order internal.ExtractedOrder) (internal.CompanyInfo, []internal.LineItem) {
	company := internal.CompanyInfo{
		CompanyName:        strings.TrimSpace(order.CompanyInfo.CompanyName),
		BillingCompanyName: strings.TrimSpace(order.CompanyInfo.BillingCompanyName),
		BillingAddress:     strings.TrimSpace(order.CompanyInfo.BillingAddress),
		ShippingAddress:    strings.TrimSpace(order.CompanyInfo.ShippingAddress),
		CustomerPONumber:   strings.TrimSpace(order.CompanyInfo.CustomerPONumber),
		PODate:             strings.TrimSpace(order.CompanyInfo.PODate),
		ShippingMethod:     strings.TrimSpace(order.CompanyInfo.ShippingMethod),
	}

	items := make([]internal.LineItem, 0, len(order.LineItems))
	for _, raw := range order.LineItems {
		items = append(items, internal.LineItem{
			ExternalPartNumber: strings.TrimSpace(raw.ExternalPartNumber),
			Description:        strings.TrimSpace(raw.Description),
			Quantity:           util.CoerceFloat(raw.Quantity),
			UnitPrice:          util.CoerceFloat(raw.UnitPrice),
		})
	}

	return company, items
}
