package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jung-kurt/gofpdf/v2"

	"resto-backend/internal/config"
	"resto-backend/internal/models"
	"resto-backend/internal/timeutil"
)

// ReportService generates the register closing report PDF and archives it
// to S3-compatible storage. The report is the auditor-facing record of a
// till session: every movement, the method breakdown and the counted-vs-
// expected outcome.
type ReportService struct {
	cfg       *config.Config
	registers *RegisterService
}

func NewReportService(cfg *config.Config, registers *RegisterService) *ReportService {
	return &ReportService{
		cfg:       cfg,
		registers: registers,
	}
}

// GenerateClosingReport renders a register's full ledger and reconciliation
// summary as a PDF. Works for open registers too (as an inspection snapshot),
// but the closing fields only appear once the register is closed.
func (s *ReportService) GenerateClosingReport(ctx context.Context, registerID int) ([]byte, error) {
	register, err := s.registers.Get(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, fmt.Errorf("register %d not found", registerID)
	}
	entries, err := s.registers.Transactions(ctx, registerID)
	if err != nil {
		return nil, err
	}
	summary, err := s.registers.Summary(ctx, registerID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Register Closing Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Session Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Session #%d", register.ID), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Opened by: %s", register.OpenedByName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Opened at: %s", register.OpenedAt.Format(timeutil.DisplayLayout)), "RB", 1, "L", false, 0, "")
	if register.Status == models.RegisterStatusClosed && register.ClosedAt != nil {
		pdf.CellFormat(95, 7, fmt.Sprintf("Closed by: %s", register.ClosedByName), "LB", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("Closed at: %s", register.ClosedAt.Format(timeutil.DisplayLayout)), "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Transaction ledger
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Movements", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(30, 7, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Method", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Balance", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Notes", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, tx := range entries {
		method := tx.PaymentMethodName
		if method == "" && tx.Type == models.TransactionTypePayment {
			method = "cash"
		}
		notes := tx.Notes
		if len(notes) > 18 {
			notes = notes[:15] + "..."
		}
		pdf.CellFormat(30, 6, tx.CreatedAt.Format(timeutil.TimeLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, string(tx.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, method, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, tx.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tx.Balance.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, notes, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Method breakdown
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Income by Payment Method", "1", 1, "L", true, 0, "")

	methods := make([]string, 0, len(summary.ByMethod))
	for name := range summary.ByMethod {
		methods = append(methods, name)
	}
	sort.Strings(methods)

	pdf.SetFont("Arial", "", 11)
	for _, name := range methods {
		pdf.CellFormat(95, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, summary.ByMethod[name].StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Reconciliation summary
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Reconciliation", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, "Opening balance", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, summary.OpeningBalance.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(95, 7, "Income", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, summary.IncomeTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(95, 7, "Expenses", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, summary.ExpenseTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(95, 7, "Cash in drawer (expected)", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, summary.CashOnlyBalance.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(95, 7, "Grand total (all methods)", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, summary.GrandTotalBalance.StringFixed(2), "1", 1, "R", false, 0, "")

	if register.Status == models.RegisterStatusClosed && register.ClosingBalance != nil {
		counted := *register.ClosingBalance
		difference := counted.Sub(summary.GrandTotalBalance)

		pdf.CellFormat(95, 7, "Counted at close", "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, counted.StringFixed(2), "1", 1, "R", false, 0, "")

		if difference.IsZero() {
			pdf.SetFillColor(200, 255, 200)
		} else {
			pdf.SetFillColor(255, 200, 200)
		}
		pdf.SetFont("Arial", "B", 14)
		diffText := fmt.Sprintf("Difference: %s", difference.StringFixed(2))
		if difference.IsZero() {
			diffText = "BALANCED"
		}
		pdf.CellFormat(190, 10, diffText, "1", 1, "C", true, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render closing report: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveClosingReport uploads a rendered report to the archive bucket and
// returns the object key. A disabled archive returns an empty key without
// error so the close flow never depends on it.
func (s *ReportService) ArchiveClosingReport(ctx context.Context, registerID int, report []byte) (string, error) {
	if !s.cfg.Archive.Enabled {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.Archive.AccessKey,
			s.cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(s.cfg.Archive.Region),
	)
	if err != nil {
		return "", fmt.Errorf("failed to configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.Archive.Endpoint)
	})

	key := fmt.Sprintf("closings/register_%d_%s.pdf", registerID, timeutil.Now().Format("20060102_150405"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Archive.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(report),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload closing report: %w", err)
	}

	log.Printf("[Report] Archived closing report for register %d: %s", registerID, key)
	return key, nil
}
