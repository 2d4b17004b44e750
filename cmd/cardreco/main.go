package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/config"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/gateway"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/render"
	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/usecase"
)

func main() {
	// Define command-line flags
	folder := flag.String("folder", "", "Path to a single transaction folder")
	batch := flag.String("batch", "", "Path to a base folder of transaction subfolders")
	rateStr := flag.String("rate", "", "Exchange rate override (e.g. 83)")
	xlsxOut := flag.String("xlsx", "", "Optional path for the Excel report (single folder only)")
	pdfOut := flag.String("pdf", "", "Optional path for the batch summary PDF")
	flag.Parse()

	if (*folder == "") == (*batch == "") {
		fmt.Println("Error: exactly one of -folder or -batch is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if *rateStr != "" {
		rate, err := decimal.NewFromString(*rateStr)
		if err != nil {
			log.Fatalf("Error parsing exchange rate: %v", err)
		}
		cfg.ExchangeRate = rate
	}

	// --- Dependency Injection (Wiring the application) ---
	// 1. Create the repository (the outermost layer)
	repo := gateway.NewWorkbookRepository()

	// 2. Create the usecase and inject the repository (the core logic layer)
	uc := usecase.NewReconciliationUseCase(repo)

	ctx := context.Background()
	if *folder != "" {
		runSingle(ctx, uc, cfg, *folder, *xlsxOut)
		return
	}
	runBatch(ctx, uc, cfg, *batch, *pdfOut)
}

func runSingle(ctx context.Context, uc *usecase.ReconciliationUseCase, cfg config.Config, folder, xlsxOut string) {
	paths, err := gateway.MapFolder(folder)
	if err != nil {
		log.Fatalf("Error mapping folder: %v", err)
	}

	report, err := uc.Run(ctx, paths, cfg)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to generate JSON report: %v", err)
	}
	fmt.Println(string(output))

	if xlsxOut != "" {
		if err := render.WriteWorkbook(report, xlsxOut); err != nil {
			log.Fatalf("Failed to write Excel report: %v", err)
		}
	}
}

func runBatch(ctx context.Context, uc *usecase.ReconciliationUseCase, cfg config.Config, base, pdfOut string) {
	folders, err := gateway.ScanTransactionFolders(base)
	if err != nil {
		log.Fatalf("Error scanning batch folder: %v", err)
	}
	if len(folders) == 0 {
		log.Fatalf("No transaction folders found under %s", base)
	}

	results := make([]render.BatchResult, 0, len(folders))
	failed := 0
	for _, dir := range folders {
		name := filepath.Base(dir)
		paths, err := gateway.MapFolder(dir)
		if err == nil {
			report, runErr := uc.Run(ctx, paths, cfg)
			err = runErr
			if runErr == nil {
				results = append(results, render.BatchResult{Name: name, Report: report})
				fmt.Printf("%s: amount reconciled %s, fee reconciled %s, items %d/%d\n",
					name,
					report.Summary.AmountReconciledPct.Display(),
					report.Summary.FeeReconciledPct.Display(),
					report.Summary.MatchedItems,
					report.Summary.TotalInvoiceItems)
				continue
			}
		}
		failed++
		results = append(results, render.BatchResult{Name: name, Err: err})
		fmt.Printf("%s: FAILED: %v\n", name, err)
	}

	if pdfOut != "" {
		if err := render.WritePDF(results, pdfOut); err != nil {
			log.Fatalf("Failed to write batch PDF: %v", err)
		}
	}
	if failed == len(results) {
		os.Exit(1)
	}
}
