package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/classify"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/config"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/extract"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/fx"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/gcs"
	"github.com/tech6-code/DocuFlow-AI-sub001/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "statement":
		runStatement(log)
	case "invoices":
		runInvoices(log)
	case "upload":
		runUpload(log)
	case "rate":
		runRate(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Document Extraction CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  statement  Extract and reconcile a bank statement")
	fmt.Println("  invoices   Extract and classify invoices from documents")
	fmt.Println("  upload     Upload a document to GCS")
	fmt.Println("  rate       Look up a currency conversion rate")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runStatement(log zerolog.Logger) {
	fs := flag.NewFlagSet("statement", flag.ExitOnError)
	file := fs.String("file", "", "Path to the statement (local file or gs:// URI)")
	startDate := fs.String("start", "", "Keep transactions on or after this date")
	endDate := fs.String("end", "", "Keep transactions on or before this date")
	currency := fs.String("currency", "", "Normalize amounts into this currency code")
	out := fs.String("out", "", "Write the result JSON to this file (default stdout)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg := config.Load(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := buildService(ctx, cfg, log)

	page, err := loadDocument(ctx, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load document")
	}

	result, err := svc.ProcessStatement(ctx, []domain.Page{page}, extract.StatementOptions{
		StartDate:      *startDate,
		EndDate:        *endDate,
		TargetCurrency: *currency,
		SourceFile:     page.Name,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Statement processing failed")
	}

	writeResult(log, *out, result)
}

func runInvoices(log zerolog.Logger) {
	fs := flag.NewFlagSet("invoices", flag.ExitOnError)
	currency := fs.String("currency", "", "Normalize totals into this currency code")
	company := fs.String("company", "", "Filer company name (default FILER_COMPANY env)")
	trn := fs.String("trn", "", "Filer tax registration number (default FILER_TRN env)")
	out := fs.String("out", "", "Write the result JSON to this file (default stdout)")
	fs.Parse(os.Args[2:])

	files := fs.Args()
	if len(files) == 0 {
		log.Fatal().Msg("Usage: cli invoices [options] FILE...")
	}

	cfg := config.Load(log)
	if *company == "" {
		*company = cfg.FilerCompany
	}
	if *trn == "" {
		*trn = cfg.FilerTRN
	}
	if *currency == "" {
		*currency = cfg.DefaultCurrency
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := buildService(ctx, cfg, log)

	docs := make([]domain.Page, 0, len(files))
	for _, f := range files {
		page, err := loadDocument(ctx, f)
		if err != nil {
			log.Fatal().Err(err).Str("file", f).Msg("Failed to load document")
		}
		docs = append(docs, page)
	}

	result, err := svc.ProcessInvoices(ctx, docs, extract.InvoiceOptions{
		Filer:          classify.Filer{CompanyName: *company, TRN: *trn},
		TargetCurrency: *currency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invoice processing failed")
	}

	writeResult(log, *out, result)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcs.NewClient().Upload(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runRate(log zerolog.Logger) {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	from := fs.String("from", "", "Source currency label (code, symbol or word)")
	to := fs.String("to", "", "Target currency code")
	fs.Parse(os.Args[2:])

	if *from == "" || *to == "" {
		log.Fatal().Msg("Usage: cli rate -from USD -to AED")
	}

	cfg := config.Load(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	norm := fx.NewNormalizer(fx.NewHTTPRateClient(cfg.FXBaseURL), log)
	factor := norm.Factor(ctx, *from, *to)

	fmt.Printf("1 %s = %v %s\n", *from, factor, strings.ToUpper(*to))
}

func buildService(ctx context.Context, cfg *config.Config, log zerolog.Logger) *extract.Service {
	gen, err := extract.NewGeminiGenerator(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	norm := fx.NewNormalizer(fx.NewHTTPRateClient(cfg.FXBaseURL), log)

	svc := extract.NewService(gen, norm, log)
	svc.SetPageDelay(cfg.PageDelay)
	svc.SetRetryPolicy(cfg.RetryBaseDelay, cfg.RetryMaxAttempts)
	return svc
}

// loadDocument reads a local file or a gs:// object into a page.
func loadDocument(ctx context.Context, path string) (domain.Page, error) {
	if strings.HasPrefix(path, "gs://") {
		data, err := gcs.NewClient().Fetch(ctx, path)
		if err != nil {
			return domain.Page{}, err
		}
		return domain.Page{Name: gcs.FilenameFromURI(path), Data: data}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Name: filepath.Base(path), Data: data}, nil
}

func writeResult(log zerolog.Logger, out string, result interface{}) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}

	if out == "" {
		fmt.Println(string(data))
		return
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result file")
	}
	fmt.Printf("Result written to %s\n", out)
}
