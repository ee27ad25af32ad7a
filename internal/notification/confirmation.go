package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"storefront/internal/domain"
)

// Sender identifies the shop in outgoing confirmations.
type Sender struct {
	StoreName string
	Address   string
	Locale    string
}

// FormatAmount renders an amount with the grouping and decimal separators of
// locale, rounded to cents. Unknown locales fall back to English.
func FormatAmount(amount decimal.Decimal, currency, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)

	amount = amount.Round(2)
	whole := amount.Truncate(0)
	if !whole.BigInt().IsInt64() {
		return amount.String() + " " + currency
	}

	out := p.Sprintf("%v", number.Decimal(whole.IntPart()))
	if amount.IsNegative() && whole.IsZero() {
		out = "-" + out
	}
	if frac := amount.Sub(whole).Abs(); !frac.IsZero() {
		out += decimalSeparator(p) + strings.TrimPrefix(frac.String(), "0.")
	}
	return out + " " + currency
}

// decimalSeparator asks the printer how it writes 1.5.
func decimalSeparator(p *message.Printer) string {
	s := p.Sprintf("%v", number.Decimal(1.5))
	return strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
}

type confirmationLine struct {
	ProductID string
	Quantity  int
	UnitPrice string
}

type confirmationView struct {
	StoreName     string
	OrderID       string
	PaymentMethod string
	Status        string
	Lines         []confirmationLine
	Total         string
}

func newConfirmationView(order *domain.Order, from Sender) confirmationView {
	v := confirmationView{
		StoreName:     from.StoreName,
		OrderID:       order.ID,
		PaymentMethod: string(order.PaymentMethod),
		Status:        string(order.Status),
		Lines:         make([]confirmationLine, len(order.Items)),
		Total:         FormatAmount(order.Total(), order.Currency, from.Locale),
	}
	for i, item := range order.Items {
		v.Lines[i] = confirmationLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: FormatAmount(item.Price, order.Currency, from.Locale),
		}
	}
	return v
}

// OrderConfirmation composes the customer email for a persisted order. The
// receipt PDF, when given, is attached as order-<id>.pdf.
func OrderConfirmation(ctx context.Context, order *domain.Order, from Sender, receiptPDF []byte, filename string) (Message, error) {
	var html strings.Builder
	if err := confirmationBody(newConfirmationView(order, from)).Render(ctx, &html); err != nil {
		return Message{}, fmt.Errorf("rendering confirmation body: %w", err)
	}

	msg := Message{
		FromName:    from.StoreName,
		FromAddress: from.Address,
		Subject:     fmt.Sprintf("Votre commande %s est confirmée", from.StoreName),
		TextBody: fmt.Sprintf(
			"Merci pour votre commande.\nCommande #%s\nTotal : %s\nVeuillez trouver votre reçu en pièce jointe.\n",
			order.ID, FormatAmount(order.Total(), order.Currency, from.Locale),
		),
		HTMLBody: html.String(),
	}
	if order.CustomerEmail != nil {
		msg.To = *order.CustomerEmail
	}
	if len(receiptPDF) > 0 {
		msg.Attachment = &Attachment{Filename: filename, Content: receiptPDF}
	}

	return msg, nil
}
