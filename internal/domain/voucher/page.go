package voucher

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// A4 page geometry and print typography
const (
	PageWidthMM   = 210.0
	PageHeightMM  = 297.0
	PageFontStack = "'Sarabun', sans-serif"
	PageFontName  = "Sarabun"
	PageFontSize  = "13pt"
)

// Cell is one rendered table cell
type Cell struct {
	Text  string `json:"text"`
	Align Align  `json:"align"`
}

// Row is one table row. Padding rows have Index 0 and blank cells.
type Row struct {
	Index   int    `json:"index"`
	ItemID  string `json:"itemId,omitempty"`
	Padding bool   `json:"padding"`
	Cells   []Cell `json:"cells"`
}

// PageLine is a labelled header line with its resolved value
type PageLine struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Bold   bool   `json:"bold,omitempty"`
	Indent bool   `json:"indent,omitempty"`
}

// TotalRow is the table footer. The label takes the first column, the
// words span the columns up to the amount, and any trailing columns stay
// blank.
type TotalRow struct {
	Label         string `json:"label"`
	Words         string `json:"words"`
	WordsSpan     int    `json:"wordsSpan"`
	Amount        string `json:"amount"`
	TrailingCells int    `json:"trailingCells"`
}

// PageSignature is one resolved signing slot
type PageSignature struct {
	Title    string `json:"title"`
	OnLine   string `json:"onLine"`
	Caption  string `json:"caption"`
	WithDate bool   `json:"withDate"`
}

// PageDescription is the fully resolved, layout-independent content of one
// printable page. It is what the HTML template renders.
type PageDescription struct {
	Type          DocType         `json:"type"`
	WidthMM       float64         `json:"widthMm"`
	HeightMM      float64         `json:"heightMm"`
	FontFamily    string          `json:"fontFamily"`
	FontSize      string          `json:"fontSize"`
	Heading       string          `json:"heading"`
	Subtitle      string          `json:"subtitle"`
	NumberLabel   string          `json:"numberLabel"`
	DocNo         string          `json:"docNo"`
	DocNoAssigned bool            `json:"docNoAssigned"`
	OrgName       string          `json:"orgName"`
	OrgAddress    string          `json:"orgAddress"`
	ShowPsNo      bool            `json:"showPsNo"`
	PsNoPrefix    string          `json:"psNoPrefix,omitempty"`
	PsNo          string          `json:"psNo,omitempty"`
	Date          string          `json:"date"`
	Month         string          `json:"month"`
	Year          string          `json:"year"`
	HeaderLines   []PageLine      `json:"headerLines,omitempty"`
	Name          string          `json:"name"`
	Position      string          `json:"position"`
	Declaration   string          `json:"declaration"`
	ExtraLines    []PageLine      `json:"extraLines,omitempty"`
	Columns       []Column        `json:"columns"`
	Rows          []Row           `json:"rows"`
	PaddingRows   int             `json:"paddingRows"`
	TotalRow      TotalRow        `json:"totalRow"`
	Total         decimal.Decimal `json:"total"`
	Signatures    []PageSignature `json:"signatures"`
}

// BuildPage resolves data against its variant layout. It is pure and
// deterministic: no clock, no randomness, and malformed amounts print as
// zero instead of failing. The only error is an unknown document type.
func BuildPage(data *DocumentData) (*PageDescription, error) {
	layout, err := LayoutFor(data.Type)
	if err != nil {
		return nil, err
	}

	page := &PageDescription{
		Type:        data.Type,
		WidthMM:     PageWidthMM,
		HeightMM:    PageHeightMM,
		FontFamily:  PageFontStack,
		FontSize:    PageFontSize,
		Heading:     MemoHeading,
		Subtitle:    layout.Subtitle,
		NumberLabel: layout.NumberLabel,
		DocNo:       DocNoPlaceholder,
		OrgName:     OrganizationName,
		OrgAddress:  OrganizationAddr,
		ShowPsNo:    layout.ShowPsNo,
		Date:        data.Date,
		Month:       data.Month,
		Year:        data.Year,
		Name:        data.Name,
		Position:    data.Position,
		Declaration: layout.Declaration,
		Columns:     layout.Columns,
		Total:       Total(data.Type, data.Items),
	}
	if no := strings.TrimSpace(data.DocNo); no != "" {
		page.DocNo = no
		page.DocNoAssigned = true
	}
	if layout.ShowPsNo {
		page.PsNoPrefix = PsNoPrefix
		page.PsNo = valueOr(data.PsNo, DocNoPlaceholder)
	}
	page.HeaderLines = resolveFields(layout.HeaderLines, data)
	page.ExtraLines = resolveFields(layout.ExtraLines, data)

	page.Rows = make([]Row, 0, max(len(data.Items), layout.MinRows))
	for i, item := range data.Items {
		page.Rows = append(page.Rows, itemRow(layout, data.Type, i+1, item))
	}
	page.PaddingRows = PaddingRows(layout.MinRows, len(data.Items))
	for range page.PaddingRows {
		page.Rows = append(page.Rows, blankRow(layout))
	}

	page.TotalRow = totalRow(layout, page.Total)
	page.Signatures = resolveSignatures(layout.Signatures, data)

	return page, nil
}

// PaddingRows returns how many blank rows bring n items up to minRows.
// It is never negative.
func PaddingRows(minRows, n int) int {
	return max(0, minRows-n)
}

func itemRow(layout Layout, t DocType, index int, item LineItem) Row {
	row := Row{Index: index, ItemID: item.ID, Cells: make([]Cell, len(layout.Columns))}
	for i, col := range layout.Columns {
		row.Cells[i] = Cell{Text: cellText(col.Key, t, index, item), Align: col.Align}
	}
	return row
}

func cellText(key ColumnKey, t DocType, index int, item LineItem) string {
	switch key {
	case ColIndex:
		return strconv.Itoa(index)
	case ColDescription:
		return item.Description
	case ColQuantity:
		return strings.TrimSpace(item.Quantity.String() + " " + item.Unit)
	case ColUnitPrice:
		return FormatMoney(item.Price.Decimal())
	case ColAmount:
		return FormatMoney(LineAmount(t, item))
	case ColRefNo:
		return item.RefNo
	case ColReceiveNo:
		return item.ReceiveNo
	case ColReceiptDate:
		return item.ReceiptDate
	case ColReceiptNo:
		return item.ReceiptNo
	case ColNote:
		return item.Note
	default:
		return ""
	}
}

func blankRow(layout Layout) Row {
	row := Row{Padding: true, Cells: make([]Cell, len(layout.Columns))}
	for i, col := range layout.Columns {
		row.Cells[i] = Cell{Align: col.Align}
	}
	return row
}

func totalRow(layout Layout, total decimal.Decimal) TotalRow {
	amountCol := layout.AmountColumn()
	return TotalRow{
		Label:         TotalLabel,
		Words:         TotalWords,
		WordsSpan:     max(1, amountCol-1),
		Amount:        FormatMoney(total),
		TrailingCells: max(0, len(layout.Columns)-amountCol-1),
	}
}

func resolveFields(fields []Field, data *DocumentData) []PageLine {
	if len(fields) == 0 {
		return nil
	}
	out := make([]PageLine, 0, len(fields))
	for _, f := range fields {
		out = append(out, PageLine{Label: f.Label, Value: fieldValue(f.Key, data), Bold: f.Bold, Indent: f.Indent})
	}
	return out
}

func fieldValue(key FieldKey, data *DocumentData) string {
	switch key {
	case FieldBankAccount:
		return data.BankAccount
	case FieldDepartment:
		return data.Department
	case FieldSubject:
		return data.Subject
	case FieldPurpose:
		return data.Purpose
	case FieldTo:
		return data.To
	default:
		return ""
	}
}

func resolveSignatures(roles []SignatureRole, data *DocumentData) []PageSignature {
	out := make([]PageSignature, 0, len(roles))
	for _, r := range roles {
		out = append(out, PageSignature{
			Title:    r.Title,
			OnLine:   signerName(r.OnLine, r, data),
			Caption:  signerName(r.Caption, r, data),
			WithDate: r.WithDate,
		})
	}
	return out
}

func signerName(src NameSource, role SignatureRole, data *DocumentData) string {
	switch src {
	case NameDeclarant:
		return data.Name
	case NameMaker:
		return valueOr(data.MakerName, DefaultMakerName)
	case NameFixed:
		return role.FixedName
	default:
		return ""
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
