package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/schoolfin/voucher/internal/domain/voucher"
)

// CreateDraft opens an editing session. A nil data starts an empty
// document of type t dated today.
func (s *DocumentService) CreateDraft(ctx context.Context, t voucher.DocType, data *voucher.DocumentData) (uuid.UUID, *voucher.DocumentData, error) {
	if data == nil {
		var err error
		if data, err = s.NewDocument(t); err != nil {
			return uuid.Nil, nil, err
		}
	}
	d, err := voucher.NewDraft(data)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if err := s.Drafts.Put(ctx, d); err != nil {
		return uuid.Nil, nil, err
	}
	return d.ID(), d.Snapshot(), nil
}

// GetDraft returns a snapshot of the session
func (s *DocumentService) GetDraft(ctx context.Context, id uuid.UUID) (*voucher.DocumentData, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Snapshot(), nil
}

// UpdateDraft applies header edits
func (s *DocumentService) UpdateDraft(ctx context.Context, id uuid.UUID, patch voucher.DocumentPatch) (*voucher.DocumentData, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Apply(patch); err != nil {
		return nil, err
	}
	return d.Snapshot(), nil
}

// AddItem appends an empty line item
func (s *DocumentService) AddItem(ctx context.Context, id uuid.UUID) (voucher.LineItem, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return voucher.LineItem{}, err
	}
	return d.AddItem(), nil
}

// ReplaceItems swaps the whole item list
func (s *DocumentService) ReplaceItems(ctx context.Context, id uuid.UUID, items []voucher.LineItem) (*voucher.DocumentData, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.ReplaceItems(items)
	return d.Snapshot(), nil
}

// UpdateItem edits one line item
func (s *DocumentService) UpdateItem(ctx context.Context, id uuid.UUID, itemID string, patch voucher.ItemPatch) (voucher.LineItem, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return voucher.LineItem{}, err
	}
	return d.UpdateItem(itemID, patch)
}

// RemoveItem deletes one line item; the last one stays
func (s *DocumentService) RemoveItem(ctx context.Context, id uuid.UUID, itemID string) (*voucher.DocumentData, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.RemoveItem(itemID); err != nil {
		return nil, err
	}
	return d.Snapshot(), nil
}

// DeleteDraft ends the session
func (s *DocumentService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return s.Drafts.Delete(ctx, id)
}

// GenerateDraft generates a PDF from the session as it is now
func (s *DocumentService) GenerateDraft(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.GenerateArtifact(ctx, d.Snapshot())
}
