package invoice

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/loudachris/tradievoice/internal/dto"
)

// Brand palette. Values mirror the PWA stylesheet.
var (
	colorPrimary   = rgb{227, 87, 171}  // brilliant rose, #E357AB
	colorSecondary = rgb{140, 135, 201} // tropical indigo, #8C87C9
	colorText      = rgb{18, 41, 51}    // dark navy, #122933
	colorBG        = rgb{245, 245, 245} // platinum white, #F5F5F5
)

type rgb struct{ r, g, b int }

// Column widths in mm; A4 is 210mm wide with 10mm margins.
var colWidths = [4]float64{95, 20, 37.5, 37.5}

// Render writes a branded A4 PDF invoice for the quote. The business
// identity comes from the profile; an empty business name falls back to
// the product name so the header is never blank.
func Render(w io.Writer, prof dto.Profile, quote dto.QuoteData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := prof.BusinessName
	if title == "" {
		title = "TradieVoice Pro"
	}
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	pdf.CellFormat(0, 12, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(colorText.r, colorText.g, colorText.b)
	if prof.ABN != "" {
		pdf.CellFormat(0, 5, "ABN: "+prof.ABN, "", 1, "L", false, 0, "")
	}
	if prof.Email != "" {
		pdf.CellFormat(0, 5, prof.Email, "", 1, "L", false, 0, "")
	}
	if prof.GSTRegistered {
		pdf.CellFormat(0, 5, "GST registered - all prices include GST", "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	customer := quote.CustomerName
	if customer == "" {
		customer = "Valued Customer"
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "To: "+customer, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	renderItemsTable(pdf, quote)
	pdf.Ln(10)

	if quote.Notes != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(colorText.r, colorText.g, colorText.b)
		pdf.CellFormat(0, 7, "Notes:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, quote.Notes, "", "L", false)
	}

	return pdf.Output(w)
}

func renderItemsTable(pdf *gofpdf.Fpdf, quote dto.QuoteData) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(colorSecondary.r, colorSecondary.g, colorSecondary.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(255, 255, 255)

	headers := [4]string{"Description", "Qty", "Unit Price", "Total"}
	for i, head := range headers {
		pdf.CellFormat(colWidths[i], 9, head, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetFillColor(colorBG.r, colorBG.g, colorBG.b)
	pdf.SetTextColor(colorText.r, colorText.g, colorText.b)
	for _, item := range quote.Items {
		pdf.CellFormat(colWidths[0], 8, item.Description, "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[1], 8, trimFloat(item.Quantity), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("$%.2f", item.UnitPrice), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("$%.2f", item.Total), "1", 1, "L", true, 0, "")
	}

	pdf.CellFormat(colWidths[0], 9, "", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colWidths[1], 9, "", "1", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(colWidths[2], 9, "Grand Total:", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colWidths[3], 9, fmt.Sprintf("$%.2f", quote.TotalAmount), "1", 1, "L", true, 0, "")
}

// trimFloat renders quantities without trailing zeros: 1 not 1.00, but
// 2.5 stays 2.5.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
