package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FieldName identifies an extracted field. The constants below are the known
// vocabulary; any other string is still a valid FieldName.
type FieldName string

const (
	FieldAmount               FieldName = "amount"
	FieldCurrency             FieldName = "currency"
	FieldBeneficiary          FieldName = "beneficiary"
	FieldApplicant            FieldName = "applicant"
	FieldCreditNumber         FieldName = "creditNumber"
	FieldExpiryDate           FieldName = "expiryDate"
	FieldPlaceOfExpiry        FieldName = "placeOfExpiry"
	FieldDate                 FieldName = "date"
	FieldDescription          FieldName = "description"
	FieldInvoiceNumber        FieldName = "invoiceNumber"
	FieldReferenceNumber      FieldName = "referenceNumber"
	FieldBLNumber             FieldName = "blNumber"
	FieldShipper              FieldName = "shipper"
	FieldConsignee            FieldName = "consignee"
	FieldVessel               FieldName = "vessel"
	FieldPortOfLoading        FieldName = "portOfLoading"
	FieldPortOfDischarge      FieldName = "portOfDischarge"
	FieldShippingDate         FieldName = "shippingDate"
	FieldLatestShipmentDate   FieldName = "latestShipmentDate"
	FieldCertificateNumber    FieldName = "certificateNumber"
	FieldCountryOfOrigin      FieldName = "countryOfOrigin"
	FieldExporter             FieldName = "exporter"
	FieldPolicyNumber         FieldName = "policyNumber"
	FieldPackages             FieldName = "packages"
	FieldGrossWeight          FieldName = "grossWeight"
	FieldNetWeight            FieldName = "netWeight"
	FieldDrawee               FieldName = "drawee"
	FieldTenor                FieldName = "tenor"
	FieldFormOfCredit         FieldName = "formOfCredit"
	FieldAvailableWith        FieldName = "availableWith"
	FieldTolerance            FieldName = "tolerance"
	FieldPartialShipments     FieldName = "partialShipments"
	FieldTranshipment         FieldName = "transhipment"
	FieldDocumentsRequired    FieldName = "documentsRequired"
	FieldAdditionalConditions FieldName = "additionalConditions"
	FieldCharges              FieldName = "charges"
	FieldPresentationPeriod   FieldName = "presentationPeriod"
	FieldConfirmation         FieldName = "confirmation"
	FieldSequence             FieldName = "sequence"
	FieldApplicableRules      FieldName = "applicableRules"
)

// DateFields are the fields whose values must parse as calendar dates.
var DateFields = []FieldName{FieldDate, FieldExpiryDate, FieldShippingDate, FieldLatestShipmentDate}

// IsDateField reports whether name holds a calendar date.
func IsDateField(name FieldName) bool {
	for _, f := range DateFields {
		if f == name {
			return true
		}
	}
	return false
}

// Field is one extracted value together with the tag or pattern that
// produced it.
type Field struct {
	Name   FieldName `json:"name"`
	Value  string    `json:"value"`
	Source string    `json:"source"`
}

// FieldMap is an insertion-ordered, read-only set of fields. The zero value is
// an empty map.
type FieldMap struct {
	fields []Field
	index  map[FieldName]int
}

// NewFieldMap builds a map from fields in order. When a name repeats, the
// first occurrence wins.
func NewFieldMap(fields ...Field) FieldMap {
	m := FieldMap{index: make(map[FieldName]int, len(fields))}
	for _, f := range fields {
		if _, dup := m.index[f.Name]; dup {
			continue
		}
		m.index[f.Name] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m
}

func (m FieldMap) Len() int { return len(m.fields) }

func (m FieldMap) Has(name FieldName) bool {
	_, ok := m.index[name]
	return ok
}

func (m FieldMap) Get(name FieldName) (Field, bool) {
	i, ok := m.index[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[i], true
}

// Value returns the raw string value or "" when absent.
func (m FieldMap) Value(name FieldName) string {
	f, _ := m.Get(name)
	return f.Value
}

// Fields returns a copy of the fields in insertion order.
func (m FieldMap) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Values flattens the map to name → value.
func (m FieldMap) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		out[string(f.Name)] = f.Value
	}
	return out
}

// Equal reports key/value/source equality including order.
func (m FieldMap) Equal(o FieldMap) bool {
	if len(m.fields) != len(o.fields) {
		return false
	}
	for i := range m.fields {
		if m.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

// Amount parses the amount field as a decimal.
func (m FieldMap) Amount() (decimal.Decimal, bool) {
	f, ok := m.Get(FieldAmount)
	if !ok {
		return decimal.Zero, false
	}
	d, err := ParseAmount(f.Value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (m FieldMap) Currency() (CurrencyCode, bool) {
	f, ok := m.Get(FieldCurrency)
	if !ok {
		return "", false
	}
	c, err := ParseCurrencyCode(f.Value)
	if err != nil {
		return "", false
	}
	return c, true
}

// Date parses the named field as a calendar date.
func (m FieldMap) Date(name FieldName) (time.Time, bool) {
	f, ok := m.Get(name)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseDate(f.Value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m FieldMap) MarshalJSON() ([]byte, error) {
	if m.fields == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.fields)
}

func (m *FieldMap) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = NewFieldMap(fields...)
	return nil
}
