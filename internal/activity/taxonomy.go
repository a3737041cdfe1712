package activity

import (
	"sort"
	"strings"

	"github.com/dhima/inventory-activity/internal/models"
)

// Action identifiers emitted by the application.
const (
	ActionUserLogin       = "USER_LOGIN"
	ActionUserLogout      = "USER_LOGOUT"
	ActionPasswordChanged = "PASSWORD_CHANGED"
	ActionUserCreated     = "USER_CREATED"
	ActionUserUpdated     = "USER_UPDATED"
	ActionUserDeleted     = "USER_DELETED"

	ActionSupplierCreated = "SUPPLIER_CREATED"
	ActionSupplierUpdated = "SUPPLIER_UPDATED"
	ActionSupplierDeleted = "SUPPLIER_DELETED"

	ActionCategoryCreated = "CATEGORY_CREATED"
	ActionCategoryUpdated = "CATEGORY_UPDATED"
	ActionCategoryDeleted = "CATEGORY_DELETED"

	ActionProductCreated = "PRODUCT_CREATED"
	ActionProductUpdated = "PRODUCT_UPDATED"
	ActionProductDeleted = "PRODUCT_DELETED"
	ActionStockAdjusted  = "STOCK_ADJUSTED"

	ActionPurchaseCreated  = "PURCHASE_CREATED"
	ActionPurchaseUpdated  = "PURCHASE_UPDATED"
	ActionPurchaseReceived = "PURCHASE_RECEIVED"
	ActionPurchaseDeleted  = "PURCHASE_DELETED"

	ActionSaleCreated = "SALE_CREATED"
	ActionSaleUpdated = "SALE_UPDATED"
	ActionSaleDeleted = "SALE_DELETED"

	ActionSettingsUpdated = "SETTINGS_UPDATED"
)

// DefaultActions returns a fresh copy of the hand-maintained action list.
func DefaultActions() []string {
	return append([]string(nil), defaultActions...)
}

// DefaultLabels returns a fresh copy of the custom labels registered by default.
func DefaultLabels() map[string]string {
	out := make(map[string]string, len(defaultLabels))
	for k, v := range defaultLabels {
		out[k] = v
	}
	return out
}

var (
	defaultActions = []string{
		ActionUserLogin, ActionUserLogout, ActionPasswordChanged,
		ActionUserCreated, ActionUserUpdated, ActionUserDeleted,
		ActionSupplierCreated, ActionSupplierUpdated, ActionSupplierDeleted,
		ActionCategoryCreated, ActionCategoryUpdated, ActionCategoryDeleted,
		ActionProductCreated, ActionProductUpdated, ActionProductDeleted,
		ActionStockAdjusted,
		ActionPurchaseCreated, ActionPurchaseUpdated, ActionPurchaseReceived, ActionPurchaseDeleted,
		ActionSaleCreated, ActionSaleUpdated, ActionSaleDeleted,
		ActionSettingsUpdated,
	}
	defaultLabels = map[string]string{
		ActionUserLogin:     "user signed in",
		ActionUserLogout:    "user signed out",
		ActionStockAdjusted: "stock adjustment",
	}

	labelReplacer = strings.NewReplacer("_", " ", "-", " ", ".", " ", ":", " ")
)

// Taxonomy is an immutable set of known action identifiers with optional custom labels.
// The zero value is an empty taxonomy.
type Taxonomy struct {
	ids    []string
	labels map[string]string
}

// NewTaxonomy builds a taxonomy from ids; blank and duplicate ids are dropped.
func NewTaxonomy(ids []string, labels map[string]string) Taxonomy {
	t := Taxonomy{
		ids:    mergeIDs(nil, ids),
		labels: make(map[string]string, len(labels)),
	}
	for id, label := range labels {
		if id = strings.TrimSpace(id); id != "" && label != "" {
			t.labels[id] = label
		}
	}
	return t
}

// DefaultTaxonomy is the taxonomy loaded at startup.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy(DefaultActions(), DefaultLabels())
}

// Actions returns the registered identifiers sorted alphabetically.
func (t Taxonomy) Actions() []string {
	return append([]string(nil), t.ids...)
}

// Contains reports whether id is registered.
func (t Taxonomy) Contains(id string) bool {
	i := sort.SearchStrings(t.ids, id)
	return i < len(t.ids) && t.ids[i] == id
}

// Label returns the custom label for id, or one derived from the identifier itself.
func (t Taxonomy) Label(id string) string {
	if label, ok := t.labels[id]; ok {
		return label
	}
	return HumanizeAction(id)
}

// Merge returns the union of the registered identifiers and observed, deduplicated
// and sorted by identifier. The taxonomy itself is left untouched.
func (t Taxonomy) Merge(observed ...string) []models.ActionOption {
	ids := mergeIDs(t.ids, observed)
	out := make([]models.ActionOption, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.ActionOption{ID: id, Label: t.Label(id)})
	}
	return out
}

// HumanizeAction turns "PRODUCT_UPDATED" into "product updated".
func HumanizeAction(id string) string {
	return strings.Join(strings.Fields(strings.ToLower(labelReplacer.Replace(id))), " ")
}

func mergeIDs(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, id := range list {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
