package inventory

import (
	"context"
	"fmt"
	"strings"

	"erp-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemView is an item with its derived status.
type ItemView struct {
	models.InventoryItem
	Status Status `json:"status"`
}

func viewOf(item models.InventoryItem) ItemView {
	return ItemView{
		InventoryItem: item,
		Status:        StatusOf(item.TotalStock, item.AvailableStock, item.Minimum),
	}
}

type ItemPage struct {
	Items []ItemView `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// CreateItem registers a new item with zero stock. Stock only enters via movements.
func (s *Service) CreateItem(ctx context.Context, in ItemInput) (*ItemView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkPhoto(ctx, in.Photo); err != nil {
		return nil, err
	}
	item := &models.InventoryItem{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Code:        in.Code,
		Unit:        strings.TrimSpace(in.Unit),
		Description: in.Description,
		Minimum:     in.Minimum,
		Photo:       in.Photo,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.log.Info("inventory item created", zap.String("item_id", item.ID), zap.String("name", item.Name))
	s.writeAudit(ctx, "inventory_item", item.ID, models.AuditActionCreate,
		fmt.Sprintf("Item created: %s", item.Name), item)

	v := viewOf(*item)
	return &v, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*ItemView, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return nil, &NotFoundError{Entity: "inventory item", ID: id}
	}
	v := viewOf(*item)
	return &v, nil
}

// UpdateItem changes descriptive fields. Totals are never touched here.
func (s *Service) UpdateItem(ctx context.Context, id string, patch ItemPatch) (*ItemView, error) {
	patch.Name = trimmed(patch.Name)
	patch.Code = trimmed(patch.Code)
	patch.Unit = trimmed(patch.Unit)
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	if patch.Photo != nil {
		if err := s.checkPhoto(ctx, *patch.Photo); err != nil {
			return nil, err
		}
	}
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return nil, &NotFoundError{Entity: "inventory item", ID: id}
	}

	previousPhoto := item.Photo
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Code != nil {
		item.Code = *patch.Code
	}
	if patch.Unit != nil {
		item.Unit = *patch.Unit
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Minimum != nil {
		item.Minimum = *patch.Minimum
	}
	if patch.Photo != nil {
		item.Photo = *patch.Photo
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.dropPhoto(ctx, previousPhoto, item.Photo)
	s.writeAudit(ctx, "inventory_item", item.ID, models.AuditActionUpdate,
		fmt.Sprintf("Item updated: %s", item.Name), item)

	// totals may have moved since FindItem, re-read for the response
	return s.GetItem(ctx, id)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// DeleteItem soft-deletes the item. Its ledger history is kept.
// Items with loans still out cannot be deleted. The item row stays locked
// from the loan check to the delete.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	var name string
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		items, err := lockItems(tx, []string{id})
		if err != nil {
			return err
		}
		name = items[id].Name

		open, err := tx.CountOpenLoans(id)
		if err != nil {
			return fmt.Errorf("count open loans: %w", err)
		}
		if open > 0 {
			return &InvalidStateError{
				Entity: "inventory item",
				ID:     id,
				State:  "on loan",
				Reason: fmt.Sprintf("%d loan(s) still open", open),
			}
		}

		ok, err := tx.SoftDeleteItem(id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if !ok {
			return &NotFoundError{Entity: "inventory item", ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("inventory item deleted", zap.String("item_id", id))
	s.writeAudit(ctx, "inventory_item", id, models.AuditActionDelete,
		fmt.Sprintf("Item deleted: %s", name), nil)
	return nil
}

func (s *Service) ListItems(ctx context.Context, f ItemFilter) (*ItemPage, error) {
	f.Page = f.Page.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := s.repo.ListItems(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := &ItemPage{
		Items: make([]ItemView, 0, len(items)),
		Total: total,
		Page:  f.Page.Page,
		Limit: f.Page.Limit,
	}
	for _, it := range items {
		out.Items = append(out.Items, viewOf(it))
	}
	return out, nil
}

// StatusSummary counts active items per status. Every status is present.
func (s *Service) StatusSummary(ctx context.Context) (map[Status]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	out := make(map[Status]int64, len(AllStatuses))
	for _, st := range AllStatuses {
		out[st] = counts[st]
	}
	return out, nil
}
