package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
	"resto-backend/internal/timeutil"
)

// PrinterService talks to the thermal printer bridges over HTTP. Kitchen
// tickets go to the kitchen printer, customer receipts to the counter
// printer. Printing never blocks order flow; failures surface to the caller
// and the items stay unprinted for a retry.
type PrinterService struct {
	client     *http.Client
	kitchenURL string
	receiptURL string
	orders     *repositories.OrderRepository
}

type TicketLine struct {
	Quantity    int    `json:"quantity"`
	Name        string `json:"name"`
	Observation string `json:"observation,omitempty"`
	Extras      string `json:"extras,omitempty"`
}

type KitchenTicketRequest struct {
	OrderID   int          `json:"order_id"`
	Table     int          `json:"table"`
	Customer  string       `json:"customer,omitempty"`
	Lines     []TicketLine `json:"lines"`
	PrintedAt string       `json:"printed_at"`
}

type ReceiptLine struct {
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	LineTotal string `json:"line_total"`
}

type ReceiptRequest struct {
	OrderID    int           `json:"order_id"`
	Table      int           `json:"table"`
	Lines      []ReceiptLine `json:"lines"`
	Subtotal   string        `json:"subtotal"`
	ServiceFee string        `json:"service_fee"`
	Total      string        `json:"total"`
	Payments   []string      `json:"payments"`
	ChangeDue  string        `json:"change_due,omitempty"`
	PrintedAt  string        `json:"printed_at"`
}

type PrintResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewPrinterService(kitchenURL, receiptURL string, timeout time.Duration, orders *repositories.OrderRepository) *PrinterService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PrinterService{
		client:     &http.Client{Timeout: timeout},
		kitchenURL: kitchenURL,
		receiptURL: receiptURL,
		orders:     orders,
	}
}

// PrintKitchenTicket sends the order's not-yet-printed items to the kitchen
// printer and marks them printed on success. Already-printed items never
// reprint, so firing twice after adding one dish produces one-line tickets.
func (s *PrinterService) PrintKitchenTicket(ctx context.Context, order *models.Order, table *models.DiningTable) error {
	var lines []TicketLine
	var itemIDs []int
	for _, item := range order.Items {
		if item.PrintedAt != nil {
			continue
		}
		lines = append(lines, TicketLine{
			Quantity:    item.Quantity,
			Name:        item.Name,
			Observation: item.Observation,
			Extras:      extrasLabel(item.Extras),
		})
		itemIDs = append(itemIDs, item.ID)
	}
	if len(lines) == 0 {
		return nil // nothing new to send
	}

	req := KitchenTicketRequest{
		OrderID:   order.ID,
		Table:     table.Number,
		Customer:  order.CustomerName,
		Lines:     lines,
		PrintedAt: timeutil.Now().Format(timeutil.DateTimeLayout),
	}
	if err := s.sendPrintRequest(s.kitchenURL, "/print-ticket", req); err != nil {
		return err
	}

	return s.orders.MarkItemsPrinted(ctx, itemIDs)
}

// PrintReceipt prints the customer-facing settlement receipt
func (s *PrinterService) PrintReceipt(ctx context.Context, order *models.Order, table *models.DiningTable, payments []models.OrderPayment, changeDue string) error {
	var lines []ReceiptLine
	for _, item := range order.Items {
		lines = append(lines, ReceiptLine{
			Quantity:  item.Quantity,
			Name:      item.Name,
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}

	var paymentLines []string
	for _, p := range payments {
		paymentLines = append(paymentLines, fmt.Sprintf("%s %s", p.PaymentMethodName, p.Amount.StringFixed(2)))
	}

	req := ReceiptRequest{
		OrderID:    order.ID,
		Table:      table.Number,
		Lines:      lines,
		Subtotal:   order.Subtotal.StringFixed(2),
		ServiceFee: order.ServiceFee.StringFixed(2),
		Total:      order.TotalAmount.StringFixed(2),
		Payments:   paymentLines,
		ChangeDue:  changeDue,
		PrintedAt:  timeutil.Now().Format(timeutil.DateTimeLayout),
	}
	return s.sendPrintRequest(s.receiptURL, "/print-receipt", req)
}

func (s *PrinterService) sendPrintRequest(baseURL, endpoint string, req any) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal print request: %w", err)
	}

	resp, err := s.client.Post(
		baseURL+endpoint,
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to send print request: %w", err)
	}
	defer resp.Body.Close()

	var printResp PrintResponse
	if err := json.NewDecoder(resp.Body).Decode(&printResp); err != nil {
		return fmt.Errorf("failed to decode print response: %w", err)
	}

	if !printResp.Success {
		return fmt.Errorf("print failed: %s", printResp.Message)
	}

	return nil
}

func extrasLabel(extras []models.ItemExtra) string {
	if len(extras) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for i, e := range extras {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("+ " + e.Name)
	}
	return buf.String()
}
