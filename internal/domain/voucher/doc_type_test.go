package voucher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocType_Properties(t *testing.T) {
	tests := []struct {
		docType     DocType
		abbr        string
		minRows     int
		hasQuantity bool
	}{
		{DocTypePaymentVoucher, "PV", 12, true},
		{DocTypeReceiveVoucher, "RV", 12, false},
		{DocTypeJournalVoucher, "JV", 12, false},
		{DocTypeWithdrawal, "CR", 10, true},
		{DocTypeReturn, "DB", 10, false},
		{DocTypePurchase, "PS", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.docType.String(), func(t *testing.T) {
			assert.True(t, tt.docType.IsValid())
			assert.Equal(t, tt.abbr, tt.docType.Abbreviation())
			assert.Equal(t, tt.minRows, tt.docType.MinRows())
			assert.Equal(t, tt.hasQuantity, tt.docType.HasQuantity())
			assert.NotEqual(t, tt.docType.String(), tt.docType.DisplayName())
		})
	}
	assert.Len(t, AllDocTypes(), len(tests))
}

func TestParseDocType(t *testing.T) {
	dt, err := ParseDocType(" PV ")
	require.NoError(t, err)
	assert.Equal(t, DocTypePaymentVoucher, dt)

	_, err = ParseDocType("invoice")
	assert.ErrorIs(t, err, ErrInvalidDocType)
}

func TestNewDocument(t *testing.T) {
	now := time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC)

	doc, err := NewDocument(DocTypeReceiveVoucher, now)
	require.NoError(t, err)

	assert.Equal(t, "07", doc.Date)
	assert.Equal(t, "มีนาคม", doc.Month)
	assert.Equal(t, "2568", doc.Year)
	require.Len(t, doc.Items, 1)
	assert.NotEmpty(t, doc.Items[0].ID)
	assert.True(t, doc.Items[0].IsBlank())

	_, err = NewDocument("x", now)
	assert.ErrorIs(t, err, ErrInvalidDocType)
}

func TestDocumentData_Filename(t *testing.T) {
	assert.Equal(t, "pv_draft.pdf", (&DocumentData{Type: DocTypePaymentVoucher}).Filename())
	assert.Equal(t, "rv_RV-0001.pdf", (&DocumentData{Type: DocTypeReceiveVoucher, DocNo: "RV-0001"}).Filename())
	assert.Equal(t, "jv_68-12.pdf", (&DocumentData{Type: DocTypeJournalVoucher, DocNo: "68/12"}).Filename())
}

func TestDocumentData_CloneIsDeep(t *testing.T) {
	orig := &DocumentData{Type: DocTypePaymentVoucher, Items: []LineItem{item("a", "1", "1")}}
	clone := orig.Clone()

	clone.Items[0].Description = "changed"
	clone.Name = "other"

	assert.Equal(t, "a", orig.Items[0].Description)
	assert.Empty(t, orig.Name)
}

func TestLayouts(t *testing.T) {
	ls := Layouts()
	require.Len(t, ls, 6)
	for _, l := range ls {
		assert.True(t, l.Type.IsValid())
		assert.Equal(t, l.Type.MinRows(), l.MinRows)
		assert.Equal(t, ColIndex, l.Columns[0].Key)
		assert.GreaterOrEqual(t, l.AmountColumn(), 2)
		assert.NotEmpty(t, l.Signatures)
	}

	l, err := LayoutFor(DocTypePaymentVoucher)
	require.NoError(t, err)
	l.Columns[0].Header = "mutated"
	again, _ := LayoutFor(DocTypePaymentVoucher)
	assert.Equal(t, "ที่", again.Columns[0].Header)
}
