package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrinter struct {
	data []byte
	err  error
}

func (p *fakePrinter) Print(_ context.Context, data []byte) error {
	p.data = append(p.data, data...)
	return p.err
}
func (p *fakePrinter) IsConnected(context.Context) bool { return p.err == nil }
func (p *fakePrinter) Type() string                     { return "network" }

func TestPrintInvoiceReceipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addMedicine(t, "Amoxicillin", "AMX-1", 20, 10)
	rate := 12.0
	in := invoiceInput(sale(a.ID, 2))
	in.GSTRate = &rate
	in.DoctorName = "Dr. Rao"
	inv, err := env.invoices.CreateInvoice(ctx, in)
	require.NoError(t, err)

	p := &fakePrinter{}
	header := entity.ReceiptHeader{StoreName: "City Pharmacy", GSTIN: "29ABCDE1234F1Z5"}
	svc := NewPrinterService(p, env.invoices, header, 48)

	receipt, err := svc.PrintInvoiceReceipt(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, receipt.InvoiceNumber)
	assert.Equal(t, 1.2, receipt.CGST)
	assert.Equal(t, 1.2, receipt.SGST)
	assert.Equal(t, 22.4, receipt.Total)
	assert.Equal(t, "Pending", receipt.Status)

	assert.True(t, bytes.Contains(p.data, []byte("City Pharmacy")))
	assert.True(t, bytes.Contains(p.data, []byte("GSTIN: 29ABCDE1234F1Z5")))
	assert.True(t, bytes.Contains(p.data, []byte("Dr. Rao")))
	assert.True(t, bytes.Contains(p.data, []byte("Amoxicillin (AMX-1)")))
	assert.True(t, bytes.Contains(p.data, []byte("22.40")))

	status := svc.GetStatus(ctx)
	assert.True(t, status.Configured)
	assert.Equal(t, 48, status.Width)

	_, err = svc.PrintInvoiceReceipt(ctx, uuid.New())
	assertAppError(t, err, http.StatusNotFound)
}

func TestPrintInvoiceReceipt_PrinterFailureKeepsReceipt(t *testing.T) {
	env := newTestEnv(t)
	a := env.addMedicine(t, "Amoxicillin", "AMX-1", 20, 10)
	inv, err := env.invoices.CreateInvoice(context.Background(), invoiceInput(sale(a.ID, 1)))
	require.NoError(t, err)

	svc := NewPrinterService(&fakePrinter{err: errors.New("paper out")}, env.invoices, entity.ReceiptHeader{StoreName: "X"}, 32)
	receipt, err := svc.PrintInvoiceReceipt(context.Background(), inv.ID)
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, 10.0, receipt.Total)
}
