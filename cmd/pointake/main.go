package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"pointake/internal/config"
	"pointake/internal/listener"
	"pointake/internal/pipeline"
	"pointake/internal/refstore"
	"pointake/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	store := refstore.NewStore()
	processor := pipeline.NewProcessingService(db, cfg, store)

	cmd := os.Args[1]
	switch cmd {
	case "refdata:load-parts":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("path", cfg.PartsCSVPath, "parts csv path")
		_ = fs.Parse(os.Args[2:])
		parts, err := refstore.LoadPartsCSV(*path)
		must(err)
		must(db.UpsertParts(parts))
		fmt.Printf("parts loaded: %d from %s\n", len(parts), *path)
	case "refdata:load-customers":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("path", cfg.CustomersXLSXPath, "customers xlsx path")
		_ = fs.Parse(os.Args[2:])
		customers, err := refstore.LoadCustomersXLSX(*path)
		must(err)
		must(db.UpsertCustomers(customers))
		fmt.Printf("customers loaded: %d from %s\n", len(customers), *path)
	case "refdata:sync":
		svc := refstore.NewSyncService(db, cfg)
		parts, customers, err := svc.SyncAll(context.Background())
		must(err)
		fmt.Printf("refdata sync complete: parts=%d customers=%d\n", parts, customers)
	case "order:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "extracted order json path")
		outERP := fs.String("out-erp", "", "also export the erp payload here")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		must(processor.RefreshSnapshot())
		orderID, res, err := processor.ProcessFile(*input)
		must(err)
		fmt.Printf("order %d: mapped=%d/%d rate=%.3f customer=%s review=%v\n",
			orderID, res.PartsMapped, res.TotalParts, res.MappingSuccessRate,
			res.CompanyInfo.CustomerMatchStatus, res.RequiresManualReview)
		if strings.TrimSpace(*outERP) != "" {
			must(processor.ExportERP(orderID, *outERP))
			fmt.Printf("erp payload written to %s\n", *outERP)
		}
	case "order:process-pending":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 20, "max orders to export")
		_ = fs.Parse(os.Args[2:])
		exported, err := processor.ExportPending(*batch)
		must(err)
		fmt.Printf("exported %d pending orders\n", exported)
	case "order:correct-part":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.Int("orderId", 0, "order id")
		lineNo := fs.Int("line", 0, "line number (1-based)")
		partNumber := fs.String("part", "", "internal part number")
		_ = fs.Parse(os.Args[2:])
		if *orderID == 0 || *lineNo == 0 || strings.TrimSpace(*partNumber) == "" {
			must(fmt.Errorf("--orderId --line --part are required"))
		}
		res, err := processor.CorrectPart(*orderID, *lineNo, *partNumber)
		must(err)
		fmt.Printf("order %d corrected: mapped=%d/%d review=%v\n",
			*orderID, res.PartsMapped, res.TotalParts, res.RequiresManualReview)
	case "order:correct-customer":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.Int("orderId", 0, "order id")
		account := fs.String("account", "", "customer account number")
		_ = fs.Parse(os.Args[2:])
		if *orderID == 0 || strings.TrimSpace(*account) == "" {
			must(fmt.Errorf("--orderId --account are required"))
		}
		res, err := processor.CorrectCustomerAccount(*orderID, *account)
		must(err)
		fmt.Printf("order %d corrected: customer=%s review=%v\n",
			*orderID, res.CompanyInfo.CustomerMatchStatus, res.RequiresManualReview)
	case "export:erp":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.Int("orderId", 0, "order id")
		out := fs.String("out", "", "output json path")
		_ = fs.Parse(os.Args[2:])
		if *orderID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--orderId and --out are required"))
		}
		must(processor.ExportERP(*orderID, *out))
		fmt.Printf("order %d exported to %s\n", *orderID, *out)
	case "export:review":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.Int("orderId", 0, "order id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *orderID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--orderId and --out are required"))
		}
		must(processor.ExportReview(*orderID, *out))
		fmt.Printf("review sheet for order %d written to %s\n", *orderID, *out)
	case "order:watch":
		s := listener.NewService(db, cfg, store)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: pointake <command>")
	fmt.Println("commands:")
	fmt.Println("  refdata:load-parts [--path=./data/parts.csv]")
	fmt.Println("  refdata:load-customers [--path=./data/customer_list.xlsx]")
	fmt.Println("  refdata:sync")
	fmt.Println("  order:process --input=./intake/po_123.json [--out-erp=./out/erp/order.json]")
	fmt.Println("  order:process-pending [--batch=20]")
	fmt.Println("  order:correct-part --orderId=1 --line=2 --part=ZTIP107D73")
	fmt.Println("  order:correct-customer --orderId=1 --account=781")
	fmt.Println("  export:erp --orderId=1 --out=./out/erp/order_1.json")
	fmt.Println("  export:review --orderId=1 --out=./out/review/order_1.xlsx")
	fmt.Println("  order:watch")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
