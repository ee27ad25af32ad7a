package receipt

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

var itemLine = regexp.MustCompile(`^(\d+)\. Product (.+) - Qty (\d+) x (\S+) (\S+)$`)

// Line is one itemized row of a receipt.
type Line struct {
	Index     int
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Currency  string
}

// Receipt is the text content recovered from a rendered document.
type Receipt struct {
	OrderID       string
	CustomerEmail string
	PaymentMethod string
	Status        string
	Currency      string
	Items         []Line
	Total         decimal.Decimal
}

// ParseLines reads back a receipt rendered with the built-in font by scanning
// the uncompressed content stream for text operands.
func ParseLines(pdf []byte) (*Receipt, error) {
	texts, err := textOperands(pdf)
	if err != nil {
		return nil, err
	}

	var r Receipt
	totalSeen := false
	for _, text := range texts {
		switch {
		case strings.HasPrefix(text, labelOrderID):
			r.OrderID = strings.TrimPrefix(text, labelOrderID)
		case strings.HasPrefix(text, labelCustomerEmail):
			r.CustomerEmail = strings.TrimPrefix(text, labelCustomerEmail)
		case strings.HasPrefix(text, labelPaymentMethod):
			r.PaymentMethod = strings.TrimPrefix(text, labelPaymentMethod)
		case strings.HasPrefix(text, labelStatus):
			r.Status = strings.TrimPrefix(text, labelStatus)
		case strings.HasPrefix(text, labelCurrency):
			r.Currency = strings.TrimPrefix(text, labelCurrency)
		case strings.HasPrefix(text, labelTotal):
			fields := strings.Fields(strings.TrimPrefix(text, labelTotal))
			if len(fields) == 0 {
				return nil, fmt.Errorf("empty total line")
			}
			total, err := decimal.NewFromString(fields[0])
			if err != nil {
				return nil, fmt.Errorf("parsing total %q: %w", fields[0], err)
			}
			r.Total = total
			totalSeen = true
		default:
			m := itemLine.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			line, err := parseItem(m)
			if err != nil {
				return nil, err
			}
			r.Items = append(r.Items, line)
		}
	}

	if r.OrderID == "" || !totalSeen {
		return nil, fmt.Errorf("document is not a receipt")
	}

	return &r, nil
}

func parseItem(m []string) (Line, error) {
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return Line{}, fmt.Errorf("parsing item index: %w", err)
	}
	qty, err := strconv.Atoi(m[3])
	if err != nil {
		return Line{}, fmt.Errorf("parsing item quantity: %w", err)
	}
	price, err := decimal.NewFromString(m[4])
	if err != nil {
		return Line{}, fmt.Errorf("parsing item price %q: %w", m[4], err)
	}
	return Line{
		Index:     index,
		ProductID: m[2],
		Quantity:  qty,
		UnitPrice: price,
		Currency:  m[5],
	}, nil
}

// textOperands returns the string operand of every Tj operator in
// document order.
func textOperands(pdf []byte) ([]string, error) {
	decoder := charmap.Windows1252.NewDecoder()

	var texts []string
	for i := 0; i < len(pdf); i++ {
		if pdf[i] != '(' {
			continue
		}

		var raw bytes.Buffer
		j := i + 1
		closed := false
		for ; j < len(pdf); j++ {
			c := pdf[j]
			if c == '\\' && j+1 < len(pdf) {
				j++
				switch pdf[j] {
				case 'n':
					raw.WriteByte('\n')
				case 'r':
					raw.WriteByte('\r')
				case 't':
					raw.WriteByte('\t')
				default:
					raw.WriteByte(pdf[j])
				}
				continue
			}
			if c == ')' {
				closed = true
				break
			}
			raw.WriteByte(c)
		}
		if !closed {
			break
		}

		if bytes.HasPrefix(bytes.TrimLeft(pdf[j+1:], " "), []byte("Tj")) {
			text, err := decoder.Bytes(raw.Bytes())
			if err != nil {
				return nil, fmt.Errorf("decoding text operand: %w", err)
			}
			texts = append(texts, string(text))
		}
		i = j
	}

	return texts, nil
}
