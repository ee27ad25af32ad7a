// Package receipt renders orders into PDF receipts.
package receipt

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const (
	labelOrderID       = "Order ID: "
	labelCustomerEmail = "Customer Email: "
	labelPaymentMethod = "Payment Method: "
	labelStatus        = "Status: "
	labelCurrency      = "Currency: "
	labelItems         = "Items:"
	labelTotal         = "Total: "
)

const (
	coreFont   = "Helvetica"
	customFont = "receipt"
	lineHeight = 7.0
)

type Generator struct {
	storeName string
	fontPath  string
}

// NewGenerator returns a generator that writes with the built-in Helvetica
// font, or with the TrueType font at fontPath when one is given.
func NewGenerator(storeName, fontPath string) *Generator {
	return &Generator{storeName: storeName, fontPath: fontPath}
}

func (g *Generator) Title() string {
	if g.storeName == "" {
		return "Order Receipt"
	}
	return g.storeName + " - Order Receipt"
}

// Render lays the order out as a single-column document. The output depends
// only on the order, so rendering the same order twice yields the same bytes.
func (g *Generator) Render(order *domain.Order) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(order.CreatedAt)
	pdf.SetModificationDate(order.CreatedAt)
	pdf.SetTitle(g.Title(), true)
	pdf.SetSubject("Order "+order.ID, true)

	family := coreFont
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if g.fontPath != "" {
		font, err := os.ReadFile(g.fontPath)
		if err != nil {
			return nil, errors.NewRenderError("loading receipt font", err)
		}
		pdf.AddUTF8FontFromBytes(customFont, "", font)
		pdf.AddUTF8FontFromBytes(customFont, "B", font)
		family = customFont
		tr = func(s string) string { return s }
	}

	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 12, tr(g.Title()), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(family, "", 11)
	line := func(text, align string) {
		pdf.CellFormat(0, lineHeight, tr(text), "", 1, align, false, 0, "")
	}

	email := ""
	if order.CustomerEmail != nil {
		email = *order.CustomerEmail
	}

	line(labelOrderID+order.ID, "L")
	line(labelCustomerEmail+email, "L")
	line(labelPaymentMethod+string(order.PaymentMethod), "L")
	line(labelStatus+string(order.Status), "L")
	line(labelCurrency+order.Currency, "L")
	pdf.Ln(3)
	line(labelItems, "L")

	for i, item := range order.Items {
		line(fmt.Sprintf("%d. Product %s - Qty %d x %s %s",
			i+1, item.ProductID, item.Quantity, item.Price.String(), order.Currency), "L")
	}

	pdf.Ln(3)
	pdf.SetFont(family, "B", 12)
	line(fmt.Sprintf("%s%s %s", labelTotal, order.Total().String(), order.Currency), "R")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewRenderError("rendering receipt", err)
	}

	return buf.Bytes(), nil
}

// Filename is the attachment name used for an order's receipt.
func Filename(orderID string) string {
	return "order-" + orderID + ".pdf"
}
