package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/money"
	"github.com/sangkips/pharmacy-pos/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer  printer.Printer
	invoices *InvoiceService
	header   entity.ReceiptHeader
	width    int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, invoices *InvoiceService, header entity.ReceiptHeader, width int) *PrinterService {
	return &PrinterService{
		printer:  p,
		invoices: invoices,
		header:   header,
		width:    width,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Type() != "none",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printer.Type(),
		Width:      printer.NewDocument(s.width).Width(),
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:        s.header,
		InvoiceNumber: "TEST-001",
		Date:          time.Now().Format("2006-01-02 15:04"),
		Customer:      "Printer Test",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		Subtotal:      20.00,
		Total:         20.00,
		PaymentMethod: "Cash",
		Status:        "Paid",
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// BuildReceipt composes the receipt for an invoice without printing it.
func (s *PrinterService) BuildReceipt(ctx context.Context, invoiceID uuid.UUID) (*entity.Receipt, error) {
	invoice, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ReceiptFromInvoice(invoice, s.header), nil
}

// PrintInvoiceReceipt prints an invoice's receipt. On a printer failure the
// receipt is still returned along with the error.
func (s *PrinterService) PrintInvoiceReceipt(ctx context.Context, invoiceID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		log.Printf("Printer error (invoice %s): %v", invoiceID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// ReceiptFromInvoice maps a stored invoice to its printable form.
func ReceiptFromInvoice(inv *entity.Invoice, header entity.ReceiptHeader) *entity.Receipt {
	receipt := &entity.Receipt{
		Header:        header,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.CreatedAt.Format("2006-01-02 15:04"),
		Customer:      inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		Doctor:        inv.DoctorName,
		Items:         make([]entity.ReceiptItem, 0, len(inv.Items)),
		Subtotal:      money.ToFloat(inv.Subtotal),
		CGST:          money.ToFloat(inv.CGST),
		SGST:          money.ToFloat(inv.SGST),
		Discount:      money.ToFloat(inv.Discount),
		Total:         money.ToFloat(inv.TotalAmount),
		PaymentMethod: string(inv.PaymentMethod),
		Status:        inv.Status.String(),
	}

	for _, it := range inv.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:        it.MedicineName,
			BatchNumber: it.BatchNumber,
			Quantity:    it.Quantity,
			UnitPrice:   money.ToFloat(it.Price),
			GSTRate:     it.GSTRate,
			Total:       money.ToFloat(it.Subtotal),
		})
	}
	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes for the given paper
// width (32 or 48 columns).
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.TextF("Ph: %s", r.Header.Phone)
	}
	if r.Header.GSTIN != "" {
		doc.TextF("GSTIN: %s", r.Header.GSTIN)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Invoice:", r.InvoiceNumber).
		KeyValue("Date:", r.Date)
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.CustomerPhone != "" {
		doc.KeyValue("Phone:", r.CustomerPhone)
	}
	if r.Doctor != "" {
		doc.KeyValue("Doctor:", r.Doctor)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		name := item.Name
		if item.BatchNumber != "" {
			name = fmt.Sprintf("%s (%s)", item.Name, item.BatchNumber)
		}
		doc.ItemLine(name, item.Quantity, fmt.Sprintf("%.2f", item.UnitPrice), fmt.Sprintf("%.2f", item.Total))
	}

	doc.Separator('-')

	doc.KeyValue("Subtotal:", fmt.Sprintf("%.2f", r.Subtotal))
	if r.CGST > 0 || r.SGST > 0 {
		doc.KeyValue("CGST:", fmt.Sprintf("%.2f", r.CGST)).
			KeyValue("SGST:", fmt.Sprintf("%.2f", r.SGST))
	}
	if r.Discount > 0 {
		doc.KeyValue("Discount:", fmt.Sprintf("-%.2f", r.Discount))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		SetBold(false)

	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}
	if r.Status != "" {
		doc.KeyValue("Status:", r.Status)
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Get well soon!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
