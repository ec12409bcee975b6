package voucher

import "slices"

// Fixed texts shared by every layout
const (
	MemoHeading       = "บันทึกข้อความ"
	OrganizationName  = "โรงเรียนพระปริยัติธรรมวัดธรรมมงคล แผนกสามัญศึกษา"
	OrganizationAddr  = "132 ถนนสุขุมวิท 101 แขวงบางจาก เขตพระโขนง กรุงเทพฯ 10260"
	DocNoPlaceholder  = ".........."
	PsNoPrefix        = "ปส 03011007/"
	TotalLabel        = "รวม"
	TotalWords        = "ศูนย์บาทถ้วน"
	DefaultMakerName  = "code_name"
	DeclarantLabel    = "ข้าพเจ้า"
	PositionLabel     = "ตำแหน่ง"
	SignatureRule     = "........................................................"
	ApproverNameBlank = "(........................................)"
)

// ColumnKey identifies what a table column prints
type ColumnKey string

const (
	ColIndex       ColumnKey = "index"
	ColDescription ColumnKey = "description"
	ColQuantity    ColumnKey = "quantity"
	ColUnitPrice   ColumnKey = "unitPrice"
	ColAmount      ColumnKey = "amount"
	ColRefNo       ColumnKey = "refNo"
	ColReceiveNo   ColumnKey = "receiveNo"
	ColReceiptDate ColumnKey = "receiptDate"
	ColReceiptNo   ColumnKey = "receiptNo"
	ColNote        ColumnKey = "note"
)

// Align is the horizontal alignment of a cell
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column describes one table column. An empty Width lets the column take
// the remaining space.
type Column struct {
	Key    ColumnKey `json:"key"`
	Header string    `json:"header"`
	Width  string    `json:"width,omitempty"`
	Align  Align     `json:"align"`
}

// FieldKey names a document header field printed on its own line
type FieldKey string

const (
	FieldBankAccount FieldKey = "bankAccount"
	FieldDepartment  FieldKey = "department"
	FieldSubject     FieldKey = "subject"
	FieldPurpose     FieldKey = "purpose"
	FieldTo          FieldKey = "to"
)

// Field is a labelled line bound to a document field
type Field struct {
	Key    FieldKey `json:"key"`
	Label  string   `json:"label"`
	Bold   bool     `json:"bold,omitempty"`
	Indent bool     `json:"indent,omitempty"`
}

// NameSource selects what is printed for a signature line or caption
type NameSource string

const (
	NameNone      NameSource = ""
	NameDeclarant NameSource = "declarant"
	NameMaker     NameSource = "maker"
	NameFixed     NameSource = "fixed"
)

// SignatureRole is one signing slot in the footer
type SignatureRole struct {
	Title     string     `json:"title"`
	OnLine    NameSource `json:"onLine"`
	Caption   NameSource `json:"caption"`
	FixedName string     `json:"fixedName,omitempty"`
	WithDate  bool       `json:"withDate"`
}

// Layout is the declarative description of one document variant. A single
// page builder consumes it; variants differ only by these tables.
type Layout struct {
	Type        DocType         `json:"type"`
	Subtitle    string          `json:"subtitle"`
	NumberLabel string          `json:"numberLabel"`
	ShowPsNo    bool            `json:"showPsNo"`
	HeaderLines []Field         `json:"headerLines,omitempty"`
	Declaration string          `json:"declaration"`
	ExtraLines  []Field         `json:"extraLines,omitempty"`
	Columns     []Column        `json:"columns"`
	MinRows     int             `json:"minRows"`
	Signatures  []SignatureRole `json:"signatures"`
}

// AmountColumn returns the index of the amount column, or -1
func (l Layout) AmountColumn() int {
	return slices.IndexFunc(l.Columns, func(c Column) bool { return c.Key == ColAmount })
}

var (
	colIndex       = Column{Key: ColIndex, Header: "ที่", Width: "2.5rem", Align: AlignCenter}
	colDescription = Column{Key: ColDescription, Header: "รายการ", Align: AlignLeft}
	colQuantity    = Column{Key: ColQuantity, Header: "จำนวน", Width: "5rem", Align: AlignCenter}
	colUnitPrice   = Column{Key: ColUnitPrice, Header: "หน่วยละ", Width: "5rem", Align: AlignRight}
	colAmount      = Column{Key: ColAmount, Header: "จำนวนเงิน\n( บาท )", Width: "8rem", Align: AlignRight}
	colNote        = Column{Key: ColNote, Header: "หมายเหตุ", Width: "6rem", Align: AlignLeft}

	preparer = SignatureRole{Title: "ผู้ทำรายการ", OnLine: NameDeclarant, Caption: NameMaker}
)

var layouts = map[DocType]Layout{
	DocTypePaymentVoucher: {
		Subtitle:    DocTypePaymentVoucher.DisplayName(),
		ShowPsNo:    true,
		Declaration: "ได้รับมอบหมายให้ดำเนินการ :",
		Columns:     []Column{colIndex, colDescription, colQuantity, colUnitPrice, colAmount},
		Signatures:  []SignatureRole{preparer},
	},
	DocTypeReceiveVoucher: {
		Subtitle:    DocTypeReceiveVoucher.DisplayName(),
		Declaration: "ได้รับรายการเงินเข้าบัญชีธนาคาร/เงินสด ตามรายละเอียด ดังนี้",
		ExtraLines: []Field{
			{Key: FieldBankAccount, Label: "เลขที่บัญชีธนาคาร/เงินสด", Bold: true, Indent: true},
		},
		Columns: []Column{
			colIndex, colDescription,
			{Key: ColRefNo, Header: "เลขที่อ้างอิง", Width: "10rem", Align: AlignCenter},
			colAmount,
		},
		Signatures: []SignatureRole{preparer},
	},
	DocTypeJournalVoucher: {
		Subtitle:    DocTypeJournalVoucher.DisplayName(),
		Declaration: "ได้ดำเนินการปรับปรุง/แก้ไข รายการดังต่อไปนี้",
		Columns: []Column{
			colIndex, colDescription,
			{Key: ColRefNo, Header: "เอกสารอ้างอิง", Width: "10rem", Align: AlignCenter},
			colAmount,
		},
		Signatures: []SignatureRole{preparer},
	},
	DocTypeWithdrawal: {
		Subtitle: DocTypeWithdrawal.DisplayName(),
		HeaderLines: []Field{
			{Key: FieldSubject, Label: "เรื่อง"},
			{Key: FieldTo, Label: "เรียน"},
		},
		Declaration: "มีความประสงค์ขอเบิกเงินเพื่อใช้จ่ายตามรายการดังต่อไปนี้",
		ExtraLines: []Field{
			{Key: FieldDepartment, Label: "ฝ่าย/งาน", Indent: true},
			{Key: FieldPurpose, Label: "วัตถุประสงค์", Indent: true},
		},
		Columns: []Column{colIndex, colDescription, colQuantity, colUnitPrice, colAmount},
		Signatures: []SignatureRole{
			{Title: "ผู้ขอเบิก", OnLine: NameDeclarant, WithDate: true},
			{Title: "หัวหน้างานการเงิน", Caption: NameFixed, FixedName: ApproverNameBlank, WithDate: true},
			{Title: "ผู้อนุมัติ", Caption: NameFixed, FixedName: ApproverNameBlank, WithDate: true},
			{Title: "ผู้รับเงิน", OnLine: NameDeclarant, WithDate: true},
		},
	},
	DocTypeReturn: {
		Subtitle: DocTypeReturn.DisplayName(),
		HeaderLines: []Field{
			{Key: FieldSubject, Label: "เรื่อง"},
			{Key: FieldTo, Label: "เรียน"},
		},
		Declaration: "ขอส่งคืนเงินตามเอกสารดังรายการต่อไปนี้",
		ExtraLines: []Field{
			{Key: FieldDepartment, Label: "ฝ่าย/งาน", Indent: true},
		},
		Columns: []Column{
			colIndex,
			{Key: ColReceiveNo, Header: "เลขที่เอกสารเบิก", Width: "6rem", Align: AlignCenter},
			{Key: ColReceiptDate, Header: "วันที่ใบเสร็จ", Width: "5.5rem", Align: AlignCenter},
			{Key: ColReceiptNo, Header: "เลขที่ใบเสร็จ", Width: "5.5rem", Align: AlignCenter},
			colDescription, colAmount, colNote,
		},
		Signatures: []SignatureRole{
			{Title: "ผู้ส่งคืน", OnLine: NameDeclarant, WithDate: true},
			{Title: "ผู้รับคืน", OnLine: NameMaker, WithDate: true},
			{Title: "ผู้อนุมัติ", Caption: NameFixed, FixedName: ApproverNameBlank, WithDate: true},
		},
	},
	DocTypePurchase: {
		Subtitle: DocTypePurchase.DisplayName(),
		HeaderLines: []Field{
			{Key: FieldSubject, Label: "เรื่อง"},
			{Key: FieldTo, Label: "เรียน"},
		},
		Declaration: "มีความประสงค์ขอซื้อ/ขอจ้าง ตามรายการดังต่อไปนี้",
		ExtraLines: []Field{
			{Key: FieldDepartment, Label: "ฝ่าย/งาน", Indent: true},
			{Key: FieldPurpose, Label: "เพื่อใช้ในงาน", Indent: true},
		},
		Columns: []Column{colIndex, colDescription, colQuantity, colUnitPrice, colAmount, colNote},
		Signatures: []SignatureRole{
			{Title: "ผู้ขอซื้อ/ขอจ้าง", OnLine: NameDeclarant, WithDate: true},
			{Title: "เจ้าหน้าที่พัสดุ", OnLine: NameMaker, WithDate: true},
			{Title: "ผู้อนุมัติ", Caption: NameFixed, FixedName: ApproverNameBlank, WithDate: true},
		},
	},
}

func init() {
	for t, l := range layouts {
		l.Type = t
		l.NumberLabel = "เลขที่ " + t.Abbreviation() + " :"
		l.MinRows = t.MinRows()
		layouts[t] = l
	}
}

// LayoutFor returns the layout of variant t. The returned value is a copy
// and may be modified freely.
func LayoutFor(t DocType) (Layout, error) {
	l, ok := layouts[t]
	if !ok {
		return Layout{}, ErrInvalidDocType
	}
	l.HeaderLines = slices.Clone(l.HeaderLines)
	l.ExtraLines = slices.Clone(l.ExtraLines)
	l.Columns = slices.Clone(l.Columns)
	l.Signatures = slices.Clone(l.Signatures)
	return l, nil
}

// Layouts returns every layout in AllDocTypes order
func Layouts() []Layout {
	out := make([]Layout, 0, len(layouts))
	for _, t := range AllDocTypes() {
		l, _ := LayoutFor(t)
		out = append(out, l)
	}
	return out
}
