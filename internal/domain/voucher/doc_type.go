package voucher

import (
	"strings"

	"github.com/schoolfin/voucher/internal/domain/shared"
)

// DocType represents the document variant, which selects the layout
type DocType string

const (
	DocTypePaymentVoucher DocType = "pv"         // ใบเบิกเงิน
	DocTypeReceiveVoucher DocType = "rv"         // ใบรับเงิน
	DocTypeJournalVoucher DocType = "jv"         // ใบสำคัญรายวันทั่วไป
	DocTypeWithdrawal     DocType = "withdrawal" // ใบขอเบิก
	DocTypeReturn         DocType = "return"     // ใบคืนเงิน
	DocTypePurchase       DocType = "purchase"   // ใบขอซื้อ
)

// ErrInvalidDocType is returned for a type outside the closed set
var ErrInvalidDocType = shared.NewDomainError("INVALID_DOC_TYPE", "Invalid document type")

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	switch d {
	case DocTypePaymentVoucher, DocTypeReceiveVoucher, DocTypeJournalVoucher,
		DocTypeWithdrawal, DocTypeReturn, DocTypePurchase:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// DisplayName returns the Thai subtitle printed under the memo heading
func (d DocType) DisplayName() string {
	switch d {
	case DocTypePaymentVoucher:
		return "ใบเบิกเงิน (Payment Voucher)"
	case DocTypeReceiveVoucher:
		return "ใบรับเงิน (Receive Voucher)"
	case DocTypeJournalVoucher:
		return "ใบสำคัญรายวันทั่วไป (Journal Voucher)"
	case DocTypeWithdrawal:
		return "ใบขอเบิกเงิน (Withdrawal Request)"
	case DocTypeReturn:
		return "ใบส่งคืนเงิน (Return Request)"
	case DocTypePurchase:
		return "ใบขอซื้อ/ขอจ้าง (Purchase Request)"
	default:
		return string(d)
	}
}

// Abbreviation returns the short code shown in the number box label and
// used as the document number prefix.
func (d DocType) Abbreviation() string {
	switch d {
	case DocTypePaymentVoucher:
		return "PV"
	case DocTypeReceiveVoucher:
		return "RV"
	case DocTypeJournalVoucher:
		return "JV"
	case DocTypeWithdrawal:
		return "CR"
	case DocTypeReturn:
		return "DB"
	case DocTypePurchase:
		return "PS"
	default:
		return "DOC"
	}
}

// HasQuantity reports whether the variant prints a quantity column.
// Variants without one aggregate price alone.
func (d DocType) HasQuantity() bool {
	switch d {
	case DocTypePaymentVoucher, DocTypeWithdrawal, DocTypePurchase:
		return true
	}
	return false
}

// MinRows returns the row count of the preprinted paper form
func (d DocType) MinRows() int {
	switch d {
	case DocTypePaymentVoucher, DocTypeReceiveVoucher, DocTypeJournalVoucher:
		return 12
	default:
		return 10
	}
}

// AllDocTypes returns all valid DocType values
func AllDocTypes() []DocType {
	return []DocType{
		DocTypePaymentVoucher, DocTypeReceiveVoucher, DocTypeJournalVoucher,
		DocTypeWithdrawal, DocTypeReturn, DocTypePurchase,
	}
}

// ParseDocType parses a case-insensitive variant name
func ParseDocType(s string) (DocType, error) {
	d := DocType(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidDocType
	}
	return d, nil
}
