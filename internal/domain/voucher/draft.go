package voucher

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schoolfin/voucher/internal/domain/shared"
)

// Draft errors
var (
	ErrDraftNotFound = shared.NewDomainError("DRAFT_NOT_FOUND", "Draft not found")
	ErrItemNotFound  = shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
	ErrLastItem      = shared.NewDomainError("LAST_ITEM", "A document must keep at least one line item")
)

// DocumentPatch holds header field edits; nil fields are left unchanged
type DocumentPatch struct {
	Type        *DocType `json:"type,omitempty"`
	DocNo       *string  `json:"docNo,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Month       *string  `json:"month,omitempty"`
	Year        *string  `json:"year,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Position    *string  `json:"position,omitempty"`
	BankAccount *string  `json:"bankAccount,omitempty"`
	MakerName   *string  `json:"makerName,omitempty"`
	Department  *string  `json:"department,omitempty"`
	Subject     *string  `json:"subject,omitempty"`
	Purpose     *string  `json:"purpose,omitempty"`
	PsNo        *string  `json:"psNo,omitempty"`
	To          *string  `json:"to,omitempty"`
}

// ItemPatch holds line item edits; nil fields are left unchanged
type ItemPatch struct {
	Description *string `json:"description,omitempty"`
	Quantity    *Amount `json:"quantity,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Price       *Amount `json:"price,omitempty"`
	Note        *string `json:"note,omitempty"`
	ReceiveNo   *string `json:"receiveNo,omitempty"`
	ReceiptDate *string `json:"receiptDate,omitempty"`
	ReceiptNo   *string `json:"receiptNo,omitempty"`
	RefNo       *string `json:"refNo,omitempty"`
}

// Draft is one editing session over a document. Edits and snapshots may
// come from different goroutines; a generation reads only a Snapshot, so an
// edit made while it runs never reaches its output.
type Draft struct {
	id        uuid.UUID
	mu        sync.RWMutex
	data      *DocumentData
	updatedAt time.Time
}

// NewDraft starts a session over a copy of data. A document with no items
// receives one empty item.
func NewDraft(data *DocumentData) (*Draft, error) {
	if data == nil || !data.Type.IsValid() {
		return nil, ErrInvalidDocType
	}
	d := &Draft{id: uuid.New(), data: data.Clone(), updatedAt: time.Now()}
	if len(d.data.Items) == 0 {
		d.data.Items = []LineItem{NewLineItem()}
	}
	ensureItemIDs(d.data.Items)
	return d, nil
}

// ID returns the session id
func (d *Draft) ID() uuid.UUID {
	return d.id
}

// UpdatedAt returns the time of the last edit
func (d *Draft) UpdatedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.updatedAt
}

// Snapshot returns a deep copy of the current state
func (d *Draft) Snapshot() *DocumentData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data.Clone()
}

// Apply sets every non-nil field of p
func (d *Draft) Apply(p DocumentPatch) error {
	if p.Type != nil && !p.Type.IsValid() {
		return ErrInvalidDocType
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p.Type != nil {
		d.data.Type = *p.Type
	}
	setString(&d.data.DocNo, p.DocNo)
	setString(&d.data.Date, p.Date)
	setString(&d.data.Month, p.Month)
	setString(&d.data.Year, p.Year)
	setString(&d.data.Name, p.Name)
	setString(&d.data.Position, p.Position)
	setString(&d.data.BankAccount, p.BankAccount)
	setString(&d.data.MakerName, p.MakerName)
	setString(&d.data.Department, p.Department)
	setString(&d.data.Subject, p.Subject)
	setString(&d.data.Purpose, p.Purpose)
	setString(&d.data.PsNo, p.PsNo)
	setString(&d.data.To, p.To)
	d.updatedAt = time.Now()
	return nil
}

// SetDocNo records the number assigned by the case backend
func (d *Draft) SetDocNo(docNo string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data.DocNo = docNo
	d.updatedAt = time.Now()
}

// AddItem appends an empty item and returns it
func (d *Draft) AddItem() LineItem {
	item := NewLineItem()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.data.Items = append(d.data.Items, item)
	d.updatedAt = time.Now()
	return item
}

// UpdateItem applies p to the item with the given id
func (d *Draft) UpdateItem(id string, p ItemPatch) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexOf(id)
	if i < 0 {
		return LineItem{}, ErrItemNotFound
	}
	item := &d.data.Items[i]
	setString(&item.Description, p.Description)
	setString(&item.Unit, p.Unit)
	setString(&item.Note, p.Note)
	setString(&item.ReceiveNo, p.ReceiveNo)
	setString(&item.ReceiptDate, p.ReceiptDate)
	setString(&item.ReceiptNo, p.ReceiptNo)
	setString(&item.RefNo, p.RefNo)
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	d.updatedAt = time.Now()
	return *item, nil
}

// RemoveItem deletes the item with the given id. The last remaining item
// cannot be removed.
func (d *Draft) RemoveItem(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if len(d.data.Items) == 1 {
		return ErrLastItem
	}
	d.data.Items = slices.Delete(d.data.Items, i, i+1)
	d.updatedAt = time.Now()
	return nil
}

// ReplaceItems swaps in a whole item list. Items without an id, or repeating
// an earlier id, get a fresh one. An empty list leaves a single blank item.
func (d *Draft) ReplaceItems(items []LineItem) {
	next := slices.Clone(items)
	ensureItemIDs(next)
	if len(next) == 0 {
		next = []LineItem{NewLineItem()}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.data.Items = next
	d.updatedAt = time.Now()
}

// AppendPulled drops the items without a description and then appends
// pulled. Pulled items get fresh ids.
func (d *Draft) AppendPulled(pulled []LineItem) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := slices.DeleteFunc(d.data.Items, func(it LineItem) bool { return it.Description == "" })
	for _, it := range pulled {
		it.ID = uuid.NewString()
		kept = append(kept, it)
	}
	if len(kept) == 0 {
		kept = []LineItem{NewLineItem()}
	}
	d.data.Items = kept
	d.updatedAt = time.Now()
}

// ensureItemIDs gives every item a unique id. The first holder of an id
// keeps it; blanks and later duplicates are reassigned.
func ensureItemIDs(items []LineItem) {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; items[i].ID == "" || dup {
			items[i].ID = uuid.NewString()
		}
		seen[items[i].ID] = struct{}{}
	}
}

func (d *Draft) indexOf(id string) int {
	return slices.IndexFunc(d.data.Items, func(it LineItem) bool { return it.ID == id })
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// DraftStore keeps editing sessions between requests
type DraftStore interface {
	// Put stores or replaces a draft
	Put(ctx context.Context, d *Draft) error

	// Get returns the draft with the given id or ErrDraftNotFound
	Get(ctx context.Context, id uuid.UUID) (*Draft, error)

	// Delete removes a draft; deleting a missing draft is not an error
	Delete(ctx context.Context, id uuid.UUID) error
}
