// Command generate writes the sample document set and, optionally, seeded
// variant sets that each carry one planted discrepancy.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// scenario holds every value the four sample documents are rendered from.
type scenario struct {
	CreditNumber    string
	IssueDate       time.Time
	ExpiryDate      time.Time
	LatestShipment  time.Time
	Applicant       string
	ApplicantAddr   string
	Beneficiary     string
	BeneficiaryAddr string
	Currency        string
	CreditAmount    decimal.Decimal
	PortOfLoading   string
	PortOfDischarge string
	Quantity        int
	Goods           string
	Model           string

	InvoiceNumber   string
	InvoiceDate     time.Time
	InvoiceCurrency string
	InvoiceAmount   decimal.Decimal

	BLNumber  string
	Vessel    string
	ShippedOn time.Time

	PackingListNumber string
	Packages          int
	GrossKG           int
	NetKG             int
}

func (s scenario) UnitPrice() decimal.Decimal {
	return s.InvoiceAmount.Div(decimal.NewFromInt(int64(s.Quantity)))
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// baseScenario is the checked-in sample set. The shipment date is deliberately
// later than the latest shipment date of the credit.
func baseScenario() scenario {
	return scenario{
		CreditNumber:    "LC-2025-0042",
		IssueDate:       day(2025, 3, 1),
		ExpiryDate:      day(2025, 6, 30),
		LatestShipment:  day(2025, 6, 15),
		Applicant:       "GLOBAL IMPORTS LLC",
		ApplicantAddr:   "12 HARBOR STREET, NEW YORK",
		Beneficiary:     "ACME EXPORTS LTD",
		BeneficiaryAddr: "88 FACTORY ROAD, SHANGHAI",
		Currency:        "USD",
		CreditAmount:    decimal.NewFromInt(100000),
		PortOfLoading:   "SHANGHAI",
		PortOfDischarge: "NEW YORK",
		Quantity:        500,
		Goods:           "INDUSTRIAL PUMPS",
		Model:           "X-200",

		InvoiceNumber:   "INV-2025-118",
		InvoiceDate:     day(2025, 6, 12),
		InvoiceCurrency: "USD",
		InvoiceAmount:   decimal.NewFromInt(100000),

		BLNumber:  "MSCU1234567",
		Vessel:    "MSC AURORA V.112E",
		ShippedOn: day(2025, 6, 20),

		PackingListNumber: "PL-2025-118",
		Packages:          50,
		GrossKG:           12500,
		NetKG:             11800,
	}
}

var funcs = template.FuncMap{
	"swiftDate":   func(t time.Time) string { return t.Format("060102") },
	"docDate":     func(t time.Time) string { return t.Format("02/01/2006") },
	"swiftAmount": func(d decimal.Decimal) string { return strings.Replace(d.StringFixed(2), ".", ",", 1) },
	"money":       func(d decimal.Decimal) string { return d.StringFixed(2) },
	"grouped":     groupThousands,
}

const creditTmpl = `{1:F01BANKBEBBAXXX0000000000}{2:I700BANKUS33XXXXN}{4:
:27:1/1
:40A:IRREVOCABLE
:20:{{.CreditNumber}}
:31C:{{swiftDate .IssueDate}}
:40E:UCP LATEST VERSION
:31D:{{swiftDate .ExpiryDate}}{{.PortOfDischarge}}
:50:/123456
{{.Applicant}}
{{.ApplicantAddr}}
:59:{{.Beneficiary}}
{{.BeneficiaryAddr}}
:32B:{{.Currency}}{{swiftAmount .CreditAmount}}
:39A:05/05
:41D:ANY BANK BY NEGOTIATION
:42C:AT SIGHT
:42A:BANKUS33
:43P:ALLOWED
:43T:NOT ALLOWED
:44E:{{.PortOfLoading}}
:44F:{{.PortOfDischarge}}
:44C:{{swiftDate .LatestShipment}}
:45A:{{.Quantity}} UNITS OF {{.Goods}}
MODEL {{.Model}}
:46A:SIGNED COMMERCIAL INVOICE IN 3 COPIES
FULL SET OF CLEAN ON BOARD BILLS OF LADING
:47A:ALL DOCUMENTS MUST QUOTE THE CREDIT NUMBER
:71B:ALL CHARGES OUTSIDE ISSUING BANK FOR BENEFICIARY
:48:21 DAYS AFTER SHIPMENT
:49:WITHOUT
-}
`

const invoiceTmpl = `COMMERCIAL INVOICE

Invoice No.: {{.InvoiceNumber}}
Invoice Date: {{docDate .InvoiceDate}}
Documentary Credit No.: {{.CreditNumber}}

Seller: {{.Beneficiary}}
Buyer: {{.Applicant}}

Description of Goods: {{.Quantity}} UNITS OF {{.Goods}} MODEL {{.Model}}
Quantity: {{.Quantity}} units
Unit Price: {{.InvoiceCurrency}} {{money .UnitPrice}}

Total Amount: {{.InvoiceCurrency}} {{money .InvoiceAmount}}
`

const billOfLadingTmpl = `BILL OF LADING

B/L No.: {{.BLNumber}}
Shipper: {{.Beneficiary}}
Consignee: TO THE ORDER OF ISSUING BANK
Notify Party: {{.Applicant}}
Vessel: {{.Vessel}}
Port of Loading: {{.PortOfLoading}}
Port of Discharge: {{.PortOfDischarge}}
Shipped on Board Date: {{docDate .ShippedOn}}
Description of Goods: {{.Quantity}} UNITS OF {{.Goods}}
L/C No.: {{.CreditNumber}}
FREIGHT PREPAID
`

const packingListTmpl = `PACKING LIST

Packing List No.: {{.PackingListNumber}}
Date: {{docDate .InvoiceDate}}
Total Packages: {{.Packages}} cartons
Gross Weight: {{grouped .GrossKG}} KGS
Net Weight: {{grouped .NetKG}} KGS
Description: {{.Quantity}} UNITS OF {{.Goods}}
`

// Output file names double as document types.
var documents = []struct {
	file string
	tmpl *template.Template
}{
	{"credit_message.txt", template.Must(template.New("credit").Funcs(funcs).Parse(creditTmpl))},
	{"commercial_invoice.txt", template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTmpl))},
	{"bill_of_lading.txt", template.Must(template.New("bl").Funcs(funcs).Parse(billOfLadingTmpl))},
	{"packing_list.txt", template.Must(template.New("pl").Funcs(funcs).Parse(packingListTmpl))},
}

func writeSet(dir string, s scenario) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, d := range documents {
		f, err := os.Create(filepath.Join(dir, d.file))
		if err != nil {
			return err
		}
		err = d.tmpl.Execute(f, s)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", d.file, err)
		}
	}
	return nil
}

// mutation plants one discrepancy into a scenario.
type mutation struct {
	name  string
	apply func(rng *rand.Rand, s *scenario)
}

var mutations = []mutation{
	{"on-time", func(rng *rand.Rand, s *scenario) {
		s.ShippedOn = s.LatestShipment.AddDate(0, 0, -(rng.Intn(10) + 1))
	}},
	{"late-shipment", func(rng *rand.Rand, s *scenario) {
		s.ShippedOn = s.LatestShipment.AddDate(0, 0, rng.Intn(10)+1)
	}},
	{"over-drawn", func(rng *rand.Rand, s *scenario) {
		// Invoice 3-5% above the credit amount.
		pct := decimal.NewFromFloat(0.03 + rng.Float64()*0.02)
		s.InvoiceAmount = s.CreditAmount.Mul(decimal.NewFromInt(1).Add(pct)).Round(2)
		s.ShippedOn = s.LatestShipment.AddDate(0, 0, -1)
	}},
	{"currency-mismatch", func(rng *rand.Rand, s *scenario) {
		s.InvoiceCurrency = "EUR"
		s.ShippedOn = s.LatestShipment.AddDate(0, 0, -1)
	}},
	{"expired", func(rng *rand.Rand, s *scenario) {
		s.ShippedOn = s.ExpiryDate.AddDate(0, 0, rng.Intn(5)+1)
	}},
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func main() {
	var (
		outDir   string
		variants int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write sample document sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			sampleDir := filepath.Join(outDir, "sample")
			if err := writeSet(sampleDir, baseScenario()); err != nil {
				return err
			}
			fmt.Printf("Generated sample set -> %s\n", sampleDir)

			rng := rand.New(rand.NewSource(seed))
			for i := 1; i <= variants; i++ {
				m := mutations[rng.Intn(len(mutations))]
				s := baseScenario()
				s.CreditNumber = fmt.Sprintf("LC-2025-%04d", 100+i)
				s.InvoiceNumber = fmt.Sprintf("INV-2025-%03d", 200+i)
				m.apply(rng, &s)

				dir := filepath.Join(outDir, "sets", fmt.Sprintf("VARIANT-%03d-%s", i, m.name))
				if err := writeSet(dir, s); err != nil {
					return err
				}
				fmt.Printf("Generated %s -> %s\n", m.name, dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "testdata", "Output directory")
	cmd.Flags().IntVar(&variants, "variants", 0, "Number of variant sets with planted discrepancies")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for variant sets")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
