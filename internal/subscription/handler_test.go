package subscription

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

func TestListSubscriptions_CategoryFilter(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	app := makeApp(NewInMemoryRepository([]Subscription{
		{ID: 1, TitleEn: "Basic", Category: CategoryRegular, Status: StatusActive, CreatedAt: base},
		{ID: 2, TitleEn: "Spotlight", Category: CategorySponsored, Status: StatusActive, CreatedAt: base},
	}))

	status, env := doRequest(t, app, "GET", "/api/subscriptions?category=SPONSORED", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var data ListResult
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if data.Total != 1 || data.Subscriptions[0].ID != 2 {
		t.Fatalf("expected only the sponsored plan, got %+v", data)
	}

	if status, _ := doRequest(t, app, "GET", "/api/subscriptions?category=GOLD", ""); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown category, got %d", status)
	}
}

func TestSubscriptionCRUD(t *testing.T) {
	app := makeApp(NewInMemoryRepository(nil))

	status, env := doRequest(t, app, "POST", "/api/subscriptions",
		`{"titleAr":"ذهبي","titleEn":"Gold","price":20,"offerPrice":15,"category":"REGULAR","status":"ACTIVE",
		  "options":[{"nameAr":"أ","nameEn":"Ads"},{"nameAr":"ب","nameEn":"Boost"}]}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, env.Message)
	}
	var created Subscription
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if len(created.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(created.Options))
	}

	status, env = doRequest(t, app, "PUT", "/api/subscriptions/1", `{"options":[]}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, env.Message)
	}
	var updated Subscription
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if len(updated.Options) != 0 {
		t.Fatalf("empty options must remove all, got %d", len(updated.Options))
	}

	if status, _ := doRequest(t, app, "DELETE", "/api/subscriptions/1", ""); status != fiber.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", status)
	}
	if status, _ := doRequest(t, app, "GET", "/api/subscriptions/1", ""); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestCreateSubscription_Validation(t *testing.T) {
	app := makeApp(NewInMemoryRepository(nil))

	for name, body := range map[string]string{
		"missing titles":  `{"category":"REGULAR","status":"ACTIVE"}`,
		"bad category":    `{"titleAr":"x","titleEn":"x","category":"GOLD","status":"ACTIVE"}`,
		"negative price":  `{"titleAr":"x","titleEn":"x","price":-5,"category":"REGULAR","status":"ACTIVE"}`,
		"nameless option": `{"titleAr":"x","titleEn":"x","category":"REGULAR","status":"ACTIVE","options":[{"nameAr":"x"}]}`,
	} {
		if status, _ := doRequest(t, app, "POST", "/api/subscriptions", body); status != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, status)
		}
	}
}
