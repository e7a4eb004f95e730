package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/bazaar/internal/auth"
	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/events"
	"github.com/DukeRupert/bazaar/internal/service"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminSubject = "ops-admin"

// =============================================================================
// Test Server
// =============================================================================

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

// newTestAPI wires the real services over the memory store. Identity is
// resolved from X-Subject-ID the same way the identity middleware does it.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := discardLogger()
	st := store.NewMemory(store.DefaultTiers()...)
	pub := events.NewLogPublisher(logger)

	catalog := service.NewCatalogService(st, nil, logger)
	accounts := service.NewAccountService(st, catalog, domain.TierFree, logger)
	quota := service.NewQuotaService(st, catalog, logger)
	shops, err := service.NewShopService(st, quota, pub, logger)
	require.NoError(t, err)
	shelves := service.NewShelfService(st, quota, pub, logger)
	items := service.NewItemService(st, quota, pub, logger)
	reconcile := service.NewReconcileService(st, logger)

	requireActor := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.GetActorFromRequest(r) == nil {
				UnauthorizedResponse(w, r, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	requireAdmin := func(next http.Handler) http.Handler {
		return requireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.GetActorFromRequest(r).IsAdmin {
				ForbiddenResponse(w, r, logger)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}

	mux := http.NewServeMux()
	NewAccountHandler(catalog, accounts, quota, logger).RegisterRoutes(mux, requireActor, requireAdmin)
	NewInventoryHandler(shops, shelves, items, reconcile, logger).RegisterRoutes(mux, requireActor, requireAdmin)

	withActor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject := r.Header.Get("X-Subject-ID"); subject != "" {
			account, err := accounts.Resolve(r.Context(), subject)
			if err != nil {
				ErrorResponse(w, r, logger, err)
				return
			}
			actor := &domain.Actor{Account: account, IsAdmin: subject == adminSubject}
			r = r.WithContext(auth.SetActor(r.Context(), actor))
		}
		mux.ServeHTTP(w, r)
	})

	return &testAPI{t: t, handler: withActor}
}

func (a *testAPI) do(method, path, subject string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if subject != "" {
		req.Header.Set("X-Subject-ID", subject)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// decode asserts the status and decodes the JSON body into v.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder, status int) T {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (a *testAPI) createShop(subject, name string) shopResponse {
	a.t.Helper()
	rec := a.do("POST", "/api/shops", subject, map[string]string{"name": name})
	return decode[shopResponse](a.t, rec, http.StatusCreated)
}

func (a *testAPI) createShelf(subject string, shop shopResponse, name string) shelfResponse {
	a.t.Helper()
	rec := a.do("POST", "/api/shops/"+shop.ID.String()+"/shelves", subject, map[string]string{"name": name})
	return decode[shelfResponse](a.t, rec, http.StatusCreated)
}

// =============================================================================
// Tests
// =============================================================================

func TestInventoryAPI_ShelfQuota(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("alice", "Alice's Crafts")
	assert.Equal(t, string(domain.ShopStatusPendingApproval), shop.Status)
	assert.True(t, strings.HasPrefix(shop.Slug, "alice-s-crafts-"), shop.Slug)

	for i, name := range []string{"Mugs", "Bowls", "Plates"} {
		shelf := api.createShelf("alice", shop, name)
		assert.Equal(t, i+1, shelf.ShelfOrder)
	}

	rec := api.do("POST", "/api/shops/"+shop.ID.String()+"/shelves", "alice", map[string]string{"name": "Cups"})
	body := decode[JSONError](t, rec, http.StatusPaymentRequired)
	assert.Equal(t, domain.EQUOTA, body.Error.Code)
	assert.Contains(t, body.Error.Message, "3")
	assert.Contains(t, body.Error.Message, "Free")

	list := decode[struct {
		Shelves []shelfResponse `json:"shelves"`
	}](t, api.do("GET", "/api/shops/"+shop.ID.String()+"/shelves", "alice", nil), http.StatusOK)
	assert.Len(t, list.Shelves, 3)
}

func TestInventoryAPI_ItemQuotaAndMove(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("bob", "Bob's Repairs")
	first := api.createShelf("bob", shop, "Services")
	second := api.createShelf("bob", shop, "Parts")

	itemsPath := "/api/shops/" + shop.ID.String() + "/items"
	kinds := []string{"product", "service", "product"}
	for i, kind := range kinds {
		rec := api.do("POST", itemsPath, "bob", map[string]any{
			"kind": kind, "shelf_id": first.ID, "name": "Item", "price_cents": 500,
		})
		item := decode[itemResponse](t, rec, http.StatusCreated)
		require.NotNil(t, item.ShelfOrder)
		assert.Equal(t, i+1, *item.ShelfOrder)
		assert.Equal(t, "USD", item.Currency)
	}

	rec := api.do("POST", itemsPath, "bob", map[string]any{"kind": "service", "shelf_id": first.ID, "name": "Extra"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	// Unplaced items never count against a shelf.
	loose := decode[itemResponse](t, api.do("POST", itemsPath, "bob", map[string]any{"kind": "product", "name": "Loose"}), http.StatusCreated)
	assert.Nil(t, loose.ShelfID)

	rec = api.do("POST", "/api/items/"+loose.ID.String()+"/move", "bob", map[string]any{"shelf_id": first.ID})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	moved := decode[itemResponse](t, api.do("POST", "/api/items/"+loose.ID.String()+"/move", "bob", map[string]any{"shelf_id": second.ID}), http.StatusOK)
	require.NotNil(t, moved.ShelfID)
	assert.Equal(t, second.ID, *moved.ShelfID)
	assert.NotEqual(t, loose.ID, moved.ID)

	unplaced := decode[struct {
		Items []itemResponse `json:"items"`
	}](t, api.do("GET", itemsPath+"/unplaced", "bob", nil), http.StatusOK)
	assert.Empty(t, unplaced.Items)

	onShelf := decode[struct {
		Items []itemResponse `json:"items"`
	}](t, api.do("GET", "/api/shelves/"+first.ID.String()+"/items", "bob", nil), http.StatusOK)
	assert.Len(t, onShelf.Items, 3)
}

func TestInventoryAPI_Ownership(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("carol", "Carol's")
	shelf := api.createShelf("carol", shop, "Main")

	tests := []struct {
		name    string
		method  string
		path    string
		subject string
		body    any
		want    int
	}{
		{"anonymous create shelf", "POST", "/api/shops/" + shop.ID.String() + "/shelves", "", map[string]string{"name": "x"}, http.StatusUnauthorized},
		{"stranger create shelf", "POST", "/api/shops/" + shop.ID.String() + "/shelves", "mallory", map[string]string{"name": "x"}, http.StatusForbidden},
		{"stranger rename shelf", "PATCH", "/api/shelves/" + shelf.ID.String(), "mallory", map[string]string{"name": "x"}, http.StatusForbidden},
		{"stranger delete shelf", "DELETE", "/api/shelves/" + shelf.ID.String(), "mallory", nil, http.StatusForbidden},
		{"admin rename shelf", "PATCH", "/api/shelves/" + shelf.ID.String(), adminSubject, map[string]string{"name": "Renamed"}, http.StatusOK},
		{"stranger reads shop", "GET", "/api/shops/" + shop.ID.String(), "mallory", nil, http.StatusOK},
		{"stranger moderates", "POST", "/api/admin/shops/" + shop.ID.String() + "/approve", "mallory", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(tt.method, tt.path, tt.subject, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestInventoryAPI_BadRequests(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("dave", "Dave's")

	tests := []struct {
		name string
		path string
		body any
		want string
	}{
		{"malformed json", "/api/shops/" + shop.ID.String() + "/shelves", `{"name":`, domain.EINVALID},
		{"unknown field", "/api/shops/" + shop.ID.String() + "/shelves", `{"name":"x","color":"red"}`, domain.EINVALID},
		{"empty body", "/api/shops/" + shop.ID.String() + "/shelves", nil, domain.EINVALID},
		{"bad shop id", "/api/shops/not-a-uuid/shelves", map[string]string{"name": "x"}, domain.EINVALID},
		{"missing shop", "/api/shops/00000000-0000-0000-0000-000000000000/shelves", map[string]string{"name": "x"}, domain.ENOTFOUND},
		{"bad item kind", "/api/shops/" + shop.ID.String() + "/items", map[string]string{"kind": "gift", "name": "x"}, domain.EINVALID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do("POST", tt.path, "dave", tt.body)
			body := decode[JSONError](t, rec, ErrorCodeToHTTPStatus(tt.want))
			assert.Equal(t, tt.want, body.Error.Code)
		})
	}
}

func TestInventoryAPI_ShelfLifecycle(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("erin", "Erin's")
	a := api.createShelf("erin", shop, "A")
	b := api.createShelf("erin", shop, "B")

	reordered := decode[struct {
		Shelves []shelfResponse `json:"shelves"`
	}](t, api.do("PUT", "/api/shops/"+shop.ID.String()+"/shelves/order", "erin", map[string]any{
		"positions": []map[string]any{
			{"shelf_id": a.ID, "new_order": 2},
			{"shelf_id": b.ID, "new_order": 1},
		},
	}), http.StatusOK)
	require.Len(t, reordered.Shelves, 2)
	assert.Equal(t, b.ID, reordered.Shelves[0].ID)

	api.do("POST", "/api/shops/"+shop.ID.String()+"/items", "erin", map[string]any{"kind": "product", "shelf_id": a.ID, "name": "Vase"})
	rec := api.do("DELETE", "/api/shelves/"+a.ID.String(), "erin", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do("DELETE", "/api/shelves/"+b.ID.String(), "erin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got := decode[shopResponse](t, api.do("GET", "/api/shops/"+shop.ID.String(), "erin", nil), http.StatusOK)
	assert.Equal(t, []uuid.UUID{a.ID}, got.ShelfIDs)
}

func TestInventoryAPI_Moderation(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("frank", "Frank's")
	base := "/api/admin/shops/" + shop.ID.String()

	got := decode[shopResponse](t, api.do("POST", base+"/approve", adminSubject, nil), http.StatusOK)
	assert.Equal(t, string(domain.ShopStatusActive), got.Status)

	assert.Equal(t, http.StatusConflict, api.do("POST", base+"/approve", adminSubject, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do("POST", base+"/archive", adminSubject, nil).Code)

	got = decode[shopResponse](t, api.do("POST", base+"/suspend", adminSubject, nil), http.StatusOK)
	assert.Equal(t, string(domain.ShopStatusSuspended), got.Status)

	report := decode[map[string]any](t, api.do("POST", base+"/reconcile", adminSubject, nil), http.StatusOK)
	assert.Equal(t, shop.ID.String(), report["shop_id"])
}

func TestAccountAPI(t *testing.T) {
	api := newTestAPI(t)
	shop := api.createShop("gina", "Gina's")
	api.createShelf("gina", shop, "One")

	me := decode[meResponse](t, api.do("GET", "/api/me", "gina", nil), http.StatusOK)
	assert.Equal(t, domain.TierFree, me.Account.Tier)
	assert.False(t, me.IsAdmin)
	assert.Equal(t, 1, me.Usage.ShopsUsed)
	require.Len(t, me.Usage.Shops, 1)
	assert.Equal(t, 1, me.Usage.Shops[0].ShelvesUsed)
	assert.Equal(t, 3, me.Usage.Shops[0].ShelvesLimit)

	// Free allows one shop.
	rec := api.do("POST", "/api/shops", "gina", map[string]string{"name": "Second"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	path := "/api/admin/accounts/" + me.Account.ID.String() + "/tier"
	assert.Equal(t, http.StatusForbidden, api.do("PUT", path, "gina", map[string]string{"tier": "pro"}).Code)
	assert.Equal(t, http.StatusNotFound, api.do("PUT", path, adminSubject, map[string]string{"tier": "platinum"}).Code)

	account := decode[accountResponse](t, api.do("PUT", path, adminSubject, map[string]string{"tier": "pro"}), http.StatusOK)
	assert.Equal(t, domain.TierPro, account.Tier)

	api.createShop("gina", "Second")

	tiers := decode[struct {
		Tiers []tierResponse `json:"tiers"`
	}](t, api.do("GET", "/api/tiers", "gina", nil), http.StatusOK)
	assert.Len(t, tiers.Tiers, 3)
}

func TestAccountAPI_UpsertTier(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do("PUT", "/api/admin/tiers/starter", adminSubject, map[string]any{
		"display_name": "Starter", "max_shops": 1, "max_shelves_per_shop": 1, "max_items_per_shelf": 5, "is_active": true,
	})
	tier := decode[tierResponse](t, rec, http.StatusOK)
	assert.Equal(t, "starter", tier.Name)
	assert.Equal(t, 1, tier.MaxShelvesPerShop)

	rec = api.do("PUT", "/api/admin/tiers/broken", adminSubject, map[string]any{"max_shops": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
