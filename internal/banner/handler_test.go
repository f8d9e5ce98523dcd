package banner

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

var base = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// seedRepo holds banners on item 1 (flagged), item 2 (not flagged) and
// item 3 (deleted).
func seedRepo() *InMemoryRepository {
	repo := NewInMemoryRepository([]Banner{
		{ID: 1, ItemID: 1, IsActive: true, CreatedAt: base},
		{ID: 2, ItemID: 1, IsActive: false, CreatedAt: base.Add(time.Hour)},
		{ID: 3, ItemID: 2, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, ItemID: 3, IsActive: true, CreatedAt: base.Add(3 * time.Hour)},
		{ID: 5, ItemID: 1, IsActive: false, CreatedAt: base.Add(4 * time.Hour), DeletedAt: &base},
	})
	items := map[int]ItemSummary{
		1: {ID: 1, Title: "Bike", IsBanner: true, ImageURLs: []string{"https://img/1.jpg"}},
		2: {ID: 2, Title: "Lamp", IsBanner: false, ImageURLs: []string{}},
	}
	repo.SetItemLookup(func(id int) (ItemSummary, bool) {
		s, ok := items[id]
		return s, ok
	})
	return repo
}

func makeApp(repo Repository) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	NewHandler(NewService(repo, logger.Discard())).RegisterProtectedRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
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
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return res.StatusCode, env
}

func listBanners(t *testing.T, app *fiber.App, path string) ListResult {
	t.Helper()
	status, env := doRequest(t, app, "GET", path, "")
	if status != fiber.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d (%s)", path, status, env.Message)
	}
	var data ListResult
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return data
}

func TestListBanners_OnlyFlaggedLiveItems(t *testing.T) {
	app := makeApp(seedRepo())

	data := listBanners(t, app, "/api/items/banners")
	if data.Total != 2 || len(data.Banners) != 2 {
		t.Fatalf("expected banners 1 and 2, got %+v", data)
	}
	if data.Banners[0].ID != 2 || data.Banners[1].ID != 1 {
		t.Fatalf("expected newest first, got %d then %d", data.Banners[0].ID, data.Banners[1].ID)
	}
	if data.Banners[0].Item == nil || len(data.Banners[0].Item.ImageURLs) != 1 {
		t.Fatalf("expected embedded item with images, got %+v", data.Banners[0].Item)
	}
}

func TestListBanners_ActiveFilter(t *testing.T) {
	app := makeApp(seedRepo())

	data := listBanners(t, app, "/api/items/banners?active=true")
	if data.Total != 1 || data.Banners[0].ID != 1 {
		t.Fatalf("expected only banner 1, got %+v", data)
	}

	status, _ := doRequest(t, app, "GET", "/api/items/banners?active=maybe", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad active flag, got %d", status)
	}
}

func TestUpdateBanner_OmittedDatesBecomeNull(t *testing.T) {
	repo := seedRepo()
	app := makeApp(repo)

	status, env := doRequest(t, app, "PUT", "/api/items/banners/1",
		`{"isActive":true,"startDate":"2024-05-01T15:30:00Z","endDate":"2024-05-09T08:00:00Z"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, env.Message)
	}
	var updated Banner
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode banner: %v", err)
	}
	if updated.StartDate == nil || !updated.StartDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start date not truncated: %v", updated.StartDate)
	}

	status, env = doRequest(t, app, "PUT", "/api/items/banners/1", `{"isActive":false}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, env.Message)
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode banner: %v", err)
	}
	if updated.IsActive || updated.StartDate != nil || updated.EndDate != nil {
		t.Fatalf("expected inactive banner with null dates, got %+v", updated)
	}
}

func TestUpdateBanner_AcceptsCalendarDates(t *testing.T) {
	app := makeApp(seedRepo())

	status, env := doRequest(t, app, "PUT", "/api/items/banners/1", `{"isActive":true,"startDate":"2026-10-20"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, env.Message)
	}
	var updated Banner
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode banner: %v", err)
	}
	if updated.StartDate == nil || !updated.StartDate.Equal(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %v", updated.StartDate)
	}
	if updated.EndDate != nil {
		t.Fatalf("omitted end date should stay null, got %v", updated.EndDate)
	}

	status, _ = doRequest(t, app, "PUT", "/api/items/banners/1", `{"isActive":true,"startDate":"tomorrow"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", status)
	}
}

func TestUpdateBanner_Validation(t *testing.T) {
	app := makeApp(seedRepo())

	cases := map[string]string{
		"missing isActive": `{"startDate":"2024-05-01T00:00:00Z"}`,
		"inverted window":  `{"isActive":true,"startDate":"2024-05-09T00:00:00Z","endDate":"2024-05-01T00:00:00Z"}`,
		"malformed body":   `{"isActive":`,
	}
	for name, body := range cases {
		status, _ := doRequest(t, app, "PUT", "/api/items/banners/1", body)
		if status != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, status)
		}
	}

	status, _ := doRequest(t, app, "PUT", "/api/items/banners/5", `{"isActive":true}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 updating a deleted banner, got %d", status)
	}
}

func TestDeleteBanner_DeactivatesAndHides(t *testing.T) {
	repo := seedRepo()
	app := makeApp(repo)

	for i := 0; i < 2; i++ {
		status, _ := doRequest(t, app, "DELETE", "/api/items/banners/1", "")
		if status != fiber.StatusOK {
			t.Fatalf("delete attempt %d: expected 200, got %d", i+1, status)
		}
	}

	if repo.banners[0].IsActive || repo.banners[0].DeletedAt == nil {
		t.Fatalf("expected banner 1 inactive and deleted, got %+v", repo.banners[0])
	}

	status, _ := doRequest(t, app, "GET", "/api/items/banners/1", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
	if data := listBanners(t, app, "/api/items/banners"); data.Total != 1 {
		t.Fatalf("expected one banner left, got %d", data.Total)
	}

	status, _ = doRequest(t, app, "DELETE", "/api/items/banners/99", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown banner, got %d", status)
	}
}

func TestCheckpoint_RestoresRows(t *testing.T) {
	repo := seedRepo()
	restore := repo.Checkpoint()

	if _, err := repo.DeactivateByItem(t.Context(), 1); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	restore()

	active, err := repo.HasActive(t.Context(), 1)
	if err != nil || !active {
		t.Fatalf("expected item 1 to keep its active banner after restore, got %v %v", active, err)
	}
}
