// Package pdf renders quotes and purchase orders with maroto.
package pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// Totals are the figures printed at the bottom of a client quote.
type Totals struct {
	Subtotal   decimal.Decimal
	Freight    decimal.Decimal
	Discount   decimal.Decimal
	PaymentFee decimal.Decimal
	Final      decimal.Decimal
}

var (
	title  = props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}
	header = props.Text{Size: 9, Style: fontstyle.Bold}
	body   = props.Text{Size: 9}
	right  = props.Text{Size: 9, Align: align.Right}
	bold   = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
)

func newDoc() core.Maroto {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithRightMargin(12).
		WithTopMargin(12).
		Build()
	return maroto.New(cfg)
}

func render(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// ClientQuote renders the quote handed to the customer. Suppliers and architect commissions are
// internal and never printed.
func ClientQuote(q *models.Quote, t Totals) ([]byte, error) {
	m := newDoc()
	m.AddRows(text.NewRow(12, "Orçamento "+q.Number, title))
	quoteHeader(m, q)

	m.AddRow(7,
		text.NewCol(6, "Produto", header),
		text.NewCol(2, "Qtd.", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unitário", bold),
		text.NewCol(2, "Total", bold),
	)
	for i := range q.Items {
		it := &q.Items[i]
		m.AddRow(6,
			text.NewCol(6, itemLabel(it.ProductName, it.Description), body),
			text.NewCol(2, strconv.Itoa(it.Quantity), right),
			text.NewCol(2, Money(it.UnitValue), right),
			text.NewCol(2, Money(it.LineTotal()), right),
		)
	}

	totalsRow(m, "Subtotal", t.Subtotal)
	if !t.Freight.IsZero() {
		totalsRow(m, "Frete", t.Freight)
	}
	if !t.Discount.IsZero() {
		totalsRow(m, "Desconto", t.Discount.Neg())
	}
	if !t.PaymentFee.IsZero() {
		totalsRow(m, "Taxa de pagamento", t.PaymentFee)
	}
	totalsRow(m, "Total", t.Final)
	m.AddRows(text.NewRow(8, "Pagamento: "+q.PaymentDescription(), props.Text{Size: 9, Top: 3}))
	if q.Notes != "" {
		m.AddRows(text.NewRow(8, q.Notes, body))
	}
	return render(m)
}

// SupplierQuote renders the items of one supplier for a price check with that supplier.
func SupplierQuote(q *models.Quote, supplier *models.Supplier) ([]byte, error) {
	m := newDoc()
	m.AddRows(text.NewRow(12, "Cotação "+q.Number, title))
	m.AddRow(6, text.NewCol(12, "Fornecedor: "+supplier.Name+" ("+supplier.SupplierNumber+")", header))
	m.AddRow(6, text.NewCol(12, "Data: "+formatDate(q.QuoteDate), body))

	m.AddRow(7,
		text.NewCol(5, "Produto", header),
		text.NewCol(2, "Qtd.", bold),
		text.NewCol(5, "Condição", header),
	)
	for i := range q.Items {
		it := &q.Items[i]
		if it.SupplierID == nil || *it.SupplierID != supplier.ID {
			continue
		}
		m.AddRow(6,
			text.NewCol(5, itemLabel(it.ProductName, it.Description), body),
			text.NewCol(2, strconv.Itoa(it.Quantity), right),
			text.NewCol(5, it.ConditionText, body),
		)
	}
	return render(m)
}

// Order renders a purchase order. The total-conference order lists every item of the quote.
func Order(o *models.Order) ([]byte, error) {
	m := newDoc()
	heading := "Pedido " + o.Number
	if o.IsTotalConference {
		heading += " - Conferência total"
	}
	m.AddRows(text.NewRow(12, heading, title))
	if o.Supplier != nil {
		m.AddRow(6, text.NewCol(12, "Fornecedor: "+o.Supplier.Name+" ("+o.Supplier.SupplierNumber+")", header))
	}
	m.AddRow(6,
		text.NewCol(6, "Data: "+formatDate(o.CreatedAt), body),
		text.NewCol(6, "Status: "+string(o.Status), props.Text{Size: 9, Align: align.Right}),
	)
	if o.PurchaseConditionText != "" {
		m.AddRow(6, text.NewCol(12, "Condição de compra: "+o.PurchaseConditionText, body))
	}

	m.AddRow(7,
		text.NewCol(6, "Produto", header),
		text.NewCol(2, "Qtd.", bold),
		text.NewCol(2, "Custo", bold),
		text.NewCol(2, "Total", bold),
	)
	for i := range o.Items {
		it := &o.Items[i]
		m.AddRow(6,
			text.NewCol(6, itemLabel(it.ProductName, it.Description), body),
			text.NewCol(2, strconv.Itoa(it.Quantity), right),
			text.NewCol(2, Money(it.PurchaseUnitCost), right),
			text.NewCol(2, Money(it.LineTotal()), right),
		)
	}
	totalsRow(m, "Total", o.Total())
	if o.Notes != "" {
		m.AddRows(text.NewRow(8, o.Notes, props.Text{Size: 9, Top: 3}))
	}
	return render(m)
}

func quoteHeader(m core.Maroto, q *models.Quote) {
	if q.Customer != nil {
		kind, doc := q.Customer.Document()
		m.AddRow(6, text.NewCol(12, "Cliente: "+q.Customer.Name+" ("+kind+" "+doc+")", header))
	}
	left := "Data: " + formatDate(q.QuoteDate)
	if q.DeliveryDeadline != nil {
		left += "   Entrega: " + formatDate(*q.DeliveryDeadline)
	}
	seller := ""
	if q.Seller != nil {
		seller = "Vendedor: " + q.Seller.DisplayName()
	}
	m.AddRow(6, text.NewCol(8, left, body), text.NewCol(4, seller, props.Text{Size: 9, Align: align.Right}))
}

func totalsRow(m core.Maroto, label string, v decimal.Decimal) {
	m.AddRow(6, text.NewCol(10, label, bold), text.NewCol(2, Money(v), bold))
}

func itemLabel(name, description string) string {
	if description == "" {
		return name
	}
	return name + " - " + description
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// Money formats v as Brazilian reais, e.g. "R$ 1.234,56".
func Money(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	sign := ""
	if v.IsNegative() && !v.Round(2).IsZero() {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}
