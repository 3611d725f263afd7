// Package invoice renders orders as printable PDF invoices.
package invoice

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"storefront/internal/model"
)

// ContentType is the MIME type of rendered invoices.
const ContentType = "application/pdf"

const (
	shopName = "Storefront Optical"
	qrSize   = 256
)

// Filename returns the download name of the invoice for order.
func Filename(order *model.Order) string {
	return fmt.Sprintf("invoice-%s.pdf", order.OrderNumber)
}

// Render writes order as a PDF to w. The QR code encodes the order number.
func Render(w io.Writer, order *model.Order) error {
	qrPNG, err := qrcode.Encode(order.OrderNumber, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.OrderNumber, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, shopName)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Invoice")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, "Order number: "+order.OrderNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Status: "+string(order.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Payment: %s (%s)", order.PaymentMethod, order.PaymentStatus))
	pdf.Ln(6)
	if order.CustomerEmail != "" {
		pdf.Cell(0, 6, "Customer: "+order.CustomerEmail)
		pdf.Ln(6)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 20, 35, 35, false, imageOpts, 0, "")

	pdf.Ln(8)
	writeLines(pdf, order.Items)
	writeTotals(pdf, order)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build invoice: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	return nil
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 80, "L"},
	{"SKU", 35, "L"},
	{"Qty", 15, "R"},
	{"Unit", 25, "R"},
	{"Total", 25, "R"},
}

func writeLines(pdf *gofpdf.Fpdf, items []model.OrderItem) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		row := []string{
			item.ProductName,
			item.ProductSKU,
			fmt.Sprintf("%d", item.Quantity),
			money(item.UnitPrice),
			money(item.TotalPrice),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, row[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func writeTotals(pdf *gofpdf.Fpdf, order *model.Order) {
	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Subtotal", order.Subtotal},
		{"Tax", order.TaxAmount},
		{"Shipping", order.ShippingAmount},
		{"Discount", order.DiscountAmount.Neg()},
		{"Total", order.TotalAmount},
	}

	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(155, 7, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, money(t.amount), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
