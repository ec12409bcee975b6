package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftFilename is used in place of a document number that is not yet assigned
const DraftFilename = "draft"

// LineItem is one numbered row of a document's table
type LineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	Unit        string `json:"unit"`
	Price       Amount `json:"price"`
	Note        string `json:"note,omitempty"`
	ReceiveNo   string `json:"receiveNo,omitempty"`
	ReceiptDate string `json:"receiptDate,omitempty"`
	ReceiptNo   string `json:"receiptNo,omitempty"`
	RefNo       string `json:"refNo,omitempty"`
}

// NewLineItem creates an empty item with a fresh id
func NewLineItem() LineItem {
	return LineItem{ID: uuid.NewString()}
}

// IsBlank reports whether the operator has typed anything into the item
func (i LineItem) IsBlank() bool {
	return strings.TrimSpace(i.Description) == "" &&
		i.Quantity.IsBlank() && i.Price.IsBlank() &&
		strings.TrimSpace(i.Unit) == "" && strings.TrimSpace(i.RefNo) == "" &&
		strings.TrimSpace(i.Note) == "" && strings.TrimSpace(i.ReceiveNo) == "" &&
		strings.TrimSpace(i.ReceiptDate) == "" && strings.TrimSpace(i.ReceiptNo) == ""
}

// DocumentData is the canonical representation of one voucher or request,
// independent of the layout that renders it. Date parts are kept as
// separate display strings (day, Thai month name, Buddhist year).
type DocumentData struct {
	Type        DocType    `json:"type"`
	DocNo       string     `json:"docNo"`
	Date        string     `json:"date"`
	Month       string     `json:"month"`
	Year        string     `json:"year"`
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	BankAccount string     `json:"bankAccount,omitempty"`
	MakerName   string     `json:"makerName,omitempty"`
	Department  string     `json:"department,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Purpose     string     `json:"purpose,omitempty"`
	PsNo        string     `json:"psNo,omitempty"`
	To          string     `json:"to,omitempty"`
	Items       []LineItem `json:"items"`
}

// NewDocument creates an empty document of the given type dated now,
// holding a single empty item.
func NewDocument(t DocType, now time.Time) (*DocumentData, error) {
	if !t.IsValid() {
		return nil, ErrInvalidDocType
	}
	date, month, year := ThaiDate(now)
	return &DocumentData{
		Type:  t,
		Date:  date,
		Month: month,
		Year:  year,
		Items: []LineItem{NewLineItem()},
	}, nil
}

// Clone returns a deep copy that shares no mutable state with d
func (d *DocumentData) Clone() *DocumentData {
	if d == nil {
		return nil
	}
	out := *d
	if d.Items != nil {
		out.Items = make([]LineItem, len(d.Items))
		copy(out.Items, d.Items)
	}
	return &out
}

var filenameUnsafe = strings.NewReplacer("/", "-", "\\", "-", "\"", "", "\n", "", "\r", "")

// Filename returns {type}_{docNo or "draft"}.pdf. Path separators in the
// number are replaced so the name stays a single path element.
func (d *DocumentData) Filename() string {
	no := filenameUnsafe.Replace(strings.TrimSpace(d.DocNo))
	if no == "" {
		no = DraftFilename
	}
	return fmt.Sprintf("%s_%s.pdf", d.Type, no)
}

// Total returns the document total for its own variant
func (d *DocumentData) Total() decimal.Decimal {
	return Total(d.Type, d.Items)
}
