package reconciliation

import (
	"fmt"

	"github.com/tradedocs/lcverify/internal/domain"
)

const isoDate = "2006-01-02"

// pairChecks runs the checks that need typed values from both sides of a
// credit pairing. They follow the field comparisons in report order.
func pairChecks(a, b *domain.Document) []domain.Discrepancy {
	credit, other := a, b
	if credit.Type != domain.DocCreditMessage {
		credit, other = b, a
	}
	if credit.Type != domain.DocCreditMessage {
		return nil
	}

	switch other.Type {
	case domain.DocCommercialInvoice:
		return append(checkInvoiceAmount(credit, other), checkInvoiceDescription(credit, other)...)
	case domain.DocBillOfLading:
		return checkShipmentDates(credit, other)
	}
	return nil
}

// checkInvoiceAmount flags an invoice drawn for more than the credit amount.
// Amounts in different currencies are not comparable and are skipped.
func checkInvoiceAmount(credit, invoice *domain.Document) []domain.Discrepancy {
	creditAmt, ok1 := credit.Fields.Amount()
	invoiceAmt, ok2 := invoice.Fields.Amount()
	creditCur, ok3 := credit.Fields.Currency()
	invoiceCur, ok4 := invoice.Fields.Currency()
	if !ok1 || !ok2 || !ok3 || !ok4 || creditCur != invoiceCur {
		return nil
	}
	if !invoiceAmt.GreaterThan(creditAmt) {
		return nil
	}
	return []domain.Discrepancy{{
		Type:      domain.DiscrepancyQuantitative,
		Field:     domain.FieldAmount,
		Documents: []domain.DocumentType{invoice.Type, credit.Type},
		Values: map[string]string{
			string(invoice.Type): invoiceAmt.StringFixed(2),
			string(credit.Type):  creditAmt.StringFixed(2),
		},
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("Invoice amount (%s %s) exceeds credit amount (%s %s)",
			invoiceCur, invoiceAmt.StringFixed(2), creditCur, creditAmt.StringFixed(2)),
	}}
}

// checkInvoiceDescription flags an invoice whose goods description differs
// from the one in the credit. Case and spacing are ignored.
func checkInvoiceDescription(credit, invoice *domain.Document) []domain.Discrepancy {
	creditDesc, ok1 := credit.Fields.Get(domain.FieldDescription)
	invoiceDesc, ok2 := invoice.Fields.Get(domain.FieldDescription)
	if !ok1 || !ok2 || Normalize(creditDesc.Value) == Normalize(invoiceDesc.Value) {
		return nil
	}
	return []domain.Discrepancy{{
		Type:      domain.DiscrepancyDataInconsistency,
		Field:     domain.FieldDescription,
		Documents: []domain.DocumentType{invoice.Type, credit.Type},
		Values: map[string]string{
			string(invoice.Type): invoiceDesc.Value,
			string(credit.Type):  creditDesc.Value,
		},
		Severity:    domain.SeverityHigh,
		Description: fmt.Sprintf("Description of goods differs between %s and %s", invoice.Type, credit.Type),
	}}
}

// checkShipmentDates flags a transport document shipped after the credit
// expired or after the latest shipment date.
func checkShipmentDates(credit, transport *domain.Document) []domain.Discrepancy {
	shipped, ok := transport.Fields.Date(domain.FieldShippingDate)
	if !ok {
		return nil
	}

	var out []domain.Discrepancy
	if expiry, ok := credit.Fields.Date(domain.FieldExpiryDate); ok && shipped.After(expiry) {
		out = append(out, shipmentViolation(credit, transport, shipped.Format(isoDate), expiry.Format(isoDate),
			"Shipping date (%s) is after credit expiry date (%s)"))
	}
	if latest, ok := credit.Fields.Date(domain.FieldLatestShipmentDate); ok && shipped.After(latest) {
		out = append(out, shipmentViolation(credit, transport, shipped.Format(isoDate), latest.Format(isoDate),
			"Shipping date (%s) is after latest shipment date (%s)"))
	}
	return out
}

func shipmentViolation(credit, transport *domain.Document, shipped, limit, format string) domain.Discrepancy {
	return domain.Discrepancy{
		Type:      domain.DiscrepancyContextual,
		Field:     domain.FieldShippingDate,
		Documents: []domain.DocumentType{transport.Type, credit.Type},
		Values: map[string]string{
			string(transport.Type): shipped,
			string(credit.Type):    limit,
		},
		Severity:    domain.SeverityCritical,
		Description: fmt.Sprintf(format, shipped, limit),
	}
}
