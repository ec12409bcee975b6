package voucher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestDraft(t *testing.T) *Draft {
	t.Helper()
	d, err := NewDraft(&DocumentData{Type: DocTypePaymentVoucher})
	require.NoError(t, err)
	return d
}

func TestNewDraft(t *testing.T) {
	d := newTestDraft(t)
	snap := d.Snapshot()
	require.Len(t, snap.Items, 1, "an empty document gets one item")
	assert.NotEmpty(t, snap.Items[0].ID)

	_, err := NewDraft(&DocumentData{Type: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidDocType)
}

func TestDraft_Apply(t *testing.T) {
	d := newTestDraft(t)

	require.NoError(t, d.Apply(DocumentPatch{Name: ptr("Somchai"), Type: ptr(DocTypeReceiveVoucher)}))
	snap := d.Snapshot()
	assert.Equal(t, "Somchai", snap.Name)
	assert.Equal(t, DocTypeReceiveVoucher, snap.Type)

	err := d.Apply(DocumentPatch{Type: ptr(DocType("nope")), Name: ptr("ignored")})
	assert.ErrorIs(t, err, ErrInvalidDocType)
	assert.Equal(t, "Somchai", d.Snapshot().Name)
}

func TestDraft_ItemLifecycle(t *testing.T) {
	d := newTestDraft(t)
	first := d.Snapshot().Items[0]

	added := d.AddItem()
	updated, err := d.UpdateItem(added.ID, ItemPatch{Description: ptr("Ink"), Quantity: ptr(NewAmount("2")), Price: ptr(NewAmount("80"))})
	require.NoError(t, err)
	assert.Equal(t, "Ink", updated.Description)
	assert.Equal(t, "160", d.Snapshot().Total().String())

	_, err = d.UpdateItem("missing", ItemPatch{})
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, d.RemoveItem(first.ID))
	assert.ErrorIs(t, d.RemoveItem(added.ID), ErrLastItem)
	assert.Len(t, d.Snapshot().Items, 1)
	assert.ErrorIs(t, d.RemoveItem("missing"), ErrItemNotFound)
}

func TestDraft_AppendPulled(t *testing.T) {
	d := newTestDraft(t)
	d.AppendPulled([]LineItem{
		{Description: "Pulled", Quantity: NewAmount("1"), Unit: "รายการ", Price: NewAmount("500"), RefNo: "CR-0001"},
	})

	items := d.Snapshot().Items
	require.Len(t, items, 1, "the blank starter item is dropped")
	assert.Equal(t, "Pulled", items[0].Description)
	assert.NotEmpty(t, items[0].ID)
}

func TestDraft_SnapshotIsolation(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.Apply(DocumentPatch{Name: ptr("before")}))

	snap := d.Snapshot()
	require.NoError(t, d.Apply(DocumentPatch{Name: ptr("after")}))
	d.AddItem()

	assert.Equal(t, "before", snap.Name)
	assert.Len(t, snap.Items, 1)
}

func TestDraft_ConcurrentEditsDuringSnapshot(t *testing.T) {
	d := newTestDraft(t)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = d.Apply(DocumentPatch{Purpose: ptr("p")})
			if i%2 == 0 {
				d.AddItem()
			}
		}()
		go func() {
			defer wg.Done()
			snap := d.Snapshot()
			_, err := BuildPage(snap)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, d.Snapshot().Items, 26)
}

func TestDraft_ReplaceItems(t *testing.T) {
	d := newTestDraft(t)

	d.ReplaceItems([]LineItem{{Description: "a"}, {ID: "keep", Description: "b"}})
	items := d.Snapshot().Items
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "keep", items[1].ID)

	d.ReplaceItems(nil)
	items = d.Snapshot().Items
	require.Len(t, items, 1)
	assert.True(t, items[0].IsBlank())
}

func TestDraft_DuplicateItemIDsAreReassigned(t *testing.T) {
	t.Run("replace items", func(t *testing.T) {
		d := newTestDraft(t)
		d.ReplaceItems([]LineItem{{ID: "x", Description: "A"}, {ID: "x", Description: "B"}})

		items := d.Snapshot().Items
		require.Len(t, items, 2)
		assert.Equal(t, "x", items[0].ID)
		assert.NotEqual(t, "x", items[1].ID)
		assert.NotEmpty(t, items[1].ID)

		_, err := d.UpdateItem("x", ItemPatch{Description: ptr("changed")})
		require.NoError(t, err)
		_, err = d.UpdateItem(items[1].ID, ItemPatch{Description: ptr("also changed")})
		require.NoError(t, err)
		require.NoError(t, d.RemoveItem(items[1].ID))

		items = d.Snapshot().Items
		require.Len(t, items, 1)
		assert.Equal(t, "changed", items[0].Description)
	})

	t.Run("new draft", func(t *testing.T) {
		d, err := NewDraft(&DocumentData{
			Type:  DocTypeJournalVoucher,
			Items: []LineItem{{ID: "y"}, {ID: "y"}, {ID: ""}, {ID: "y"}},
		})
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, it := range d.Snapshot().Items {
			assert.NotEmpty(t, it.ID)
			assert.False(t, seen[it.ID], "duplicate id %q", it.ID)
			seen[it.ID] = true
		}
		assert.True(t, seen["y"])
	})
}
