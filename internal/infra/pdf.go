package infra

// pdf.go: sale receipts rendered with go-pdf/fpdf.
// Thermal receipt layout: store header, sale id and timestamp, item table,
// discount line, bold total and payment method.
// The output file is saved to storagePath/receipt_{sale id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"bebidaspos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// paymentLabels are printed on the receipt.
var paymentLabels = map[model.PaymentMethod]string{
	model.PaymentCash:   "Dinheiro",
	model.PaymentCredit: "Cartão de crédito",
	model.PaymentDebit:  "Cartão de débito",
	model.PaymentPix:    "PIX",
}

// removedProduct labels items whose product no longer exists.
const removedProduct = "Produto removido"

// GenerateReceiptPDF renders a receipt for sale. names maps product ids to
// display names. Returns the path to the generated file.
func GenerateReceiptPDF(sale *model.Sale, names map[uuid.UUID]string, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("receipt_%s.pdf", sale.ID))

	// 80mm roll width; height grows with the number of lines.
	height := 95 + 5*float64(len(sale.Items))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Comprovante de venda"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Venda "+sale.ID.String()[:8], "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Vendedor: "+sale.SellerName), "", 1, "L", false, 0, "")
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.50
	col2 := contentW * 0.18
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	subtotal := sale.Total.Add(sale.TotalDiscount)
	for _, item := range sale.Items {
		name, ok := names[item.ProductID]
		if !ok {
			name = removedProduct
		}
		if r := []rune(name); len(r) > 24 {
			name = string(r[:23]) + "..."
		}
		line := item.Price.Mul(decimalFromInt(item.Quantity))
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+line.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	if !sale.TotalDiscount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+subtotal.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1+col2, 5, "Desconto:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-R$ "+sale.TotalDiscount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "R$ "+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	label, ok := paymentLabels[sale.PaymentMethod]
	if !ok {
		label = string(sale.PaymentMethod)
	}
	pdf.CellFormat(contentW, 4, tr("Pagamento: "+label), "", 1, "L", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Obrigado pela compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
