package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pointake/internal"
	"pointake/internal/config"
	"pointake/internal/refstore"
	"pointake/internal/storage"
)

type ProcessingService struct {
	db    *storage.DB
	cfg   config.Config
	store *refstore.Store
}

func NewProcessingService(db *storage.DB, cfg config.Config, store *refstore.Store) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, store: store}
}

func (s *ProcessingService) RefreshSnapshot() error {
	parts, err := s.db.ListParts()
	if err != nil {
		return fmt.Errorf("load parts: %w", err)
	}
	customers, err := s.db.ListCustomers()
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	s.store.Publish(refstore.BuildSnapshot(parts, customers))
	fmt.Printf("snapshot published: parts=%d customers=%d\n", len(parts), len(customers))
	return nil
}

func (s *ProcessingService) ProcessFile(path string) (int, *internal.OrderResult, error) {
	sourceRef := filepath.Base(path)

	existing, err := s.db.GetOrderBySourceRef(sourceRef)
	if err != nil {
		return 0, nil, err
	}
	if existing != nil {
		return 0, nil, fmt.Errorf("order already processed: sourceRef=%s id=%d", sourceRef, existing.ID)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}

	var extracted internal.ExtractedOrder
	if err := json.Unmarshal(raw, &extracted); err != nil {
		return 0, nil, fmt.Errorf("parse %s: %w", sourceRef, err)
	}

	traceID := uuid.NewString()
	startedAt := time.Now()

	company, items := FromExtracted(extracted)
	reconciler := NewReconciler(s.cfg, s.store)
	result := reconciler.Reconcile(company, items)
	reconcileMs := float64(time.Since(startedAt).Milliseconds())

	orderID, err := s.db.InsertOrderResult(sourceRef, result)
	if err != nil {
		return 0, nil, fmt.Errorf("persist %s: %w", sourceRef, err)
	}

	timings := map[string]float64{
		"reconcile_ms": reconcileMs,
		"total_ms":     float64(time.Since(startedAt).Milliseconds()),
	}
	counts := map[string]int{
		"total_parts":         result.TotalParts,
		"parts_mapped":        result.PartsMapped,
		"parts_not_found":     result.PartsNotFound,
		"parts_manual_review": result.PartsManualReview,
	}
	if err := s.db.InsertRun(traceID, int(orderID), timings, counts); err != nil {
		fmt.Printf("warn: record run traceId=%s: %v\n", traceID, err)
	}

	fmt.Printf("[%s] processed %s: order=%d mapped=%d/%d customer=%s review=%v\n",
		traceID, sourceRef, orderID, result.PartsMapped, result.TotalParts,
		result.CompanyInfo.CustomerMatchStatus, result.RequiresManualReview)

	return int(orderID), &result, nil
}

func (s *ProcessingService) CorrectPart(orderID, lineNo int, internalPartNumber string) (*internal.OrderResult, error) {
	res, err := s.db.GetOrderResult(orderID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("order not found: id=%d", orderID)
	}

	updated, err := CorrectLine(*res, lineNo-1, internalPartNumber)
	if err != nil {
		return nil, err
	}
	if err := s.db.ReplaceOrderResult(orderID, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProcessingService) CorrectCustomerAccount(orderID int, accountNumber string) (*internal.OrderResult, error) {
	res, err := s.db.GetOrderResult(orderID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("order not found: id=%d", orderID)
	}

	updated, err := CorrectCustomer(*res, accountNumber)
	if err != nil {
		return nil, err
	}
	if err := s.db.ReplaceOrderResult(orderID, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProcessingService) ExportPending(batch int) (int, error) {
	if batch <= 0 {
		batch = 20
	}
	rows, err := s.db.ListOrdersByStatus("reconciled", batch)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, row := range rows {
		name := strings.TrimSuffix(row.SourceRef, filepath.Ext(row.SourceRef))
		outputPath := filepath.Join(s.cfg.OutputDir, "erp", fmt.Sprintf("%d_%s.json", row.ID, name))
		if err := s.ExportERP(row.ID, outputPath); err != nil {
			return exported, fmt.Errorf("export order %d: %w", row.ID, err)
		}
		exported++
	}
	return exported, nil
}

func (s *ProcessingService) ExportERP(orderID int, outputPath string) error {
	res, err := s.db.GetOrderResult(orderID)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("order not found: id=%d", orderID)
	}

	validation := ValidateForExport(*res)
	if !validation.IsValid {
		fmt.Printf("warn: order %d exported with gaps: %v\n", orderID, validation.Errors)
	}

	payload := BuildERPOrder(s.cfg, *res)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return err
	}

	return s.db.UpdateOrderStatus(orderID, "exported")
}

func (s *ProcessingService) ExportReview(orderID int, outputPath string) error {
	res, err := s.db.GetOrderResult(orderID)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("order not found: id=%d", orderID)
	}
	return ExportReviewXLSX(*res, outputPath)
}
