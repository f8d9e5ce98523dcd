package publicdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
	"github.com/wichananm65/tabdil-hub-backend/internal/category"
	"github.com/wichananm65/tabdil-hub-backend/internal/item"
	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/subscription"
	"github.com/wichananm65/tabdil-hub-backend/internal/user"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

var base = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

func fixture(t *testing.T) (*fiber.App, *item.Service) {
	t.Helper()
	log := logger.Discard()

	parent := 1
	categories := category.NewService(category.NewInMemoryRepository([]category.Category{
		{ID: 1, NameEn: "Vehicles", CreatedAt: at(1)},
		{ID: 2, NameEn: "Home", CreatedAt: at(2)},
		{ID: 3, NameEn: "Bikes", ParentID: &parent, CreatedAt: at(3)},
	}), log)

	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 1, FirstName: "Sara", Username: "sara", Email: "sara@example.com", CreatedAt: at(0)},
		{ID: 2, FirstName: "Gone", Username: "gone", Email: "gone@example.com", CreatedAt: at(0), DeletedAt: &base},
	}), log)

	sub := 3
	bannerRepo := banner.NewInMemoryRepository([]banner.Banner{
		{ID: 1, ItemID: 1, IsActive: true, CreatedAt: at(5)},
		{ID: 2, ItemID: 2, IsActive: false, CreatedAt: at(6)},
	})
	itemRepo := item.NewInMemoryRepository([]item.Item{
		{ID: 1, Title: "Road bike", CategoryID: 1, SubcategoryID: &sub, UserID: 1, IsBanner: true, CreatedAt: at(3)},
		{ID: 2, Title: "Sofa", CategoryID: 2, UserID: 1, IsBanner: true, CreatedAt: at(4)},
		{ID: 3, Title: "Car", CategoryID: 1, UserID: 1, CreatedAt: at(5)},
		{ID: 4, Title: "Old bike", CategoryID: 1, UserID: 1, CreatedAt: at(6), DeletedAt: &base},
	}, bannerRepo)
	items := item.NewService(itemRepo, log)

	plans := subscription.NewService(subscription.NewInMemoryRepository([]subscription.Subscription{
		{ID: 1, TitleEn: "Basic", Category: subscription.CategoryRegular, Status: subscription.StatusActive, CreatedAt: at(1)},
		{ID: 2, TitleEn: "Spotlight", Category: subscription.CategorySponsored, Status: subscription.StatusActive, CreatedAt: at(1)},
	}), log)

	svc := NewService(items, banner.NewService(bannerRepo, log), categories, plans, users, log)
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	NewHandler(svc).RegisterPublicRoutes(app)
	return app, items
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func get[T any](t *testing.T, app *fiber.App, path string) T {
	t.Helper()
	status, env := send(t, app, "GET", path, "")
	require.Equal(t, fiber.StatusOK, status, "GET %s: %s", path, env.Message)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestPublicBanners_ActiveOnly(t *testing.T) {
	app, _ := fixture(t)

	result := get[banner.ListResult](t, app, "/public-data/banners")
	require.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Banners[0].ID)
	require.NotNil(t, result.Banners[0].Item)
	assert.Equal(t, "Road bike", result.Banners[0].Item.Title)
}

func TestPublicBanners_DropDeletedItem(t *testing.T) {
	app, items := fixture(t)
	require.NoError(t, items.Delete(context.Background(), 1))

	result := get[banner.ListResult](t, app, "/public-data/banners")
	assert.Zero(t, result.Total)
}

func TestPublicCategories_Tree(t *testing.T) {
	app, _ := fixture(t)

	tree := get[[]category.Category](t, app, "/public-data/categories")
	require.Len(t, tree, 2)
	assert.Equal(t, "Home", tree[0].NameEn)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Bikes", tree[1].Children[0].NameEn)
}

func TestPublicSubscriptions_RegularActive(t *testing.T) {
	app, _ := fixture(t)

	result := get[subscription.ListResult](t, app, "/public-data/subscriptions")
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Basic", result.Subscriptions[0].TitleEn)
}

func TestPublicPopularItems(t *testing.T) {
	app, _ := fixture(t)

	popular := get[[]PopularCategory](t, app, "/public-data/popular-items")
	require.Len(t, popular, 2)
	assert.Equal(t, "Home", popular[0].Category.NameEn)
	require.Len(t, popular[1].Items, 2, "deleted items are excluded")
	assert.Equal(t, "Car", popular[1].Items[0].Title)
}

func TestPublicItems_Filters(t *testing.T) {
	app, _ := fixture(t)

	byCategory := get[item.ListResult](t, app, "/public-data/items?categoryId=1")
	assert.Equal(t, 2, byCategory.Total)

	bySub := get[item.ListResult](t, app, "/public-data/items?categoryId=1&subcategoryId=3")
	require.Equal(t, 1, bySub.Total)
	assert.Equal(t, "Road bike", bySub.Items[0].Title)

	all := get[item.ListResult](t, app, "/public-data/items?limit=2")
	assert.Equal(t, 3, all.Total)
	assert.Len(t, all.Items, 2)
}

func TestPublicItem_HidesDeleted(t *testing.T) {
	app, _ := fixture(t)

	got := get[item.Item](t, app, "/public-data/item/3")
	assert.Equal(t, "Car", got.Title)

	status, _ := send(t, app, "GET", "/public-data/item/4", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPublicSearch(t *testing.T) {
	app, _ := fixture(t)

	status, env := send(t, app, "POST", "/public-data/search", `{"query":"BIKE","limit":5}`)
	require.Equal(t, fiber.StatusOK, status)
	var result item.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Total, "deleted bikes stay hidden")

	status, _ = send(t, app, "POST", "/public-data/search", `{"query":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPublicUser(t *testing.T) {
	app, _ := fixture(t)

	profile := get[UserProfile](t, app, "/public-data/users/1")
	assert.Equal(t, "sara", profile.Username)
	assert.Equal(t, 3, profile.ItemCount)

	status, env := send(t, app, "GET", "/public-data/users/1", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(env.Data), "sara@example.com", "profile must not leak the email")

	listed := get[item.ListResult](t, app, "/public-data/users/1/items?limit=1")
	assert.Equal(t, 3, listed.Total)
	assert.Len(t, listed.Items, 1)

	status, _ = send(t, app, "GET", "/public-data/users/2", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = send(t, app, "GET", "/public-data/users/2/items", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
