package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sokohub/sokohub-api/models"
)

// FormatMoney renders minor currency units for display.
func FormatMoney(amount int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, amount/100, amount%100)
}

// SellerInfo is the seller block printed on an invoice.
type SellerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// BuildInvoicePDF renders the fixed A4 invoice layout: header, seller
// block, customer/shipping block, line-item table, totals, footer.
func BuildInvoicePDF(order *models.Order, seller SellerInfo, currency string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "INVOICE")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Order %s", order.OrderNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("02 Jan 2006")))
	pdf.Ln(12)

	// Seller block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Seller")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{seller.Name, seller.Address, seller.Phone, seller.Email} {
		if line != "" {
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}
	}
	pdf.Ln(5)

	// Customer / shipping block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Ship To")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	shipLines := []string{
		order.RecipientName,
		order.RecipientPhone,
		order.ShipAddress,
		fmt.Sprintf("%s %s", order.ShipCity, order.ShipPostalCode),
		fmt.Sprintf("%s, %s", order.ShipRegion, order.ShipCountry),
	}
	for _, line := range shipLines {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(8)

	// Line-item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(80, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Line Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.OrderItems {
		pdf.CellFormat(80, 8, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, FormatMoney(item.UnitPrice, currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, FormatMoney(item.LineTotal, currency), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	totals := []struct {
		label  string
		amount int64
	}{
		{"Subtotal", order.Subtotal},
		{"Tax", order.Tax},
		{"Shipping", order.Shipping},
		{"Discount", order.Discount},
		{"Total", order.Total},
	}
	for i, row := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(140, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, FormatMoney(row.amount, currency), "", 1, "R", false, 0, "")
	}

	// Footer
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Generated on %s. Thank you for shopping with us.", time.Now().Format("02 Jan 2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
