package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/user"
)

const testSecret = "test-secret"

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

const registerBody = `{
	"firstName": "Lina",
	"lastName": "Haddad",
	"username": "lina",
	"email": "Lina@Example.com",
	"password": "secret1",
	"gender": "FEMALE",
	"phoneNumber": "+96170000000",
	"address": "Main street",
	"birthDate": "1995-03-02",
	"cityId": 1,
	"countryId": 1,
	"role": "SUPER_ADMIN"
}`

func makeApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	accounts := user.NewService(user.NewInMemoryRepository(nil), logger.Discard())
	NewHandler(accounts, NewIssuer(testSecret, time.Hour)).RegisterPublicRoutes(app)

	app.Use("/api", Middleware(testSecret))
	app.Get("/api/me", func(c *fiber.Ctx) error {
		claims, err := ClaimsFromCtx(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		return response.OK(c, "me", fiber.Map{"userId": claims.UserID, "role": claims.Role})
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func TestRegisterLoginAndAccessProtectedRoute(t *testing.T) {
	app := makeApp()

	status, env := send(t, app, "POST", "/auth/register", registerBody, "")
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env = send(t, app, "POST", "/auth/login", `{"emailOrUsername":"lina@example.com","password":"secret1"}`, "")
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.RoleUser, login.Role, "register must not accept a client role")

	status, env = send(t, app, "GET", "/api/me", "", login.Token)
	require.Equal(t, fiber.StatusOK, status)

	var me struct {
		UserID int       `json:"userId"`
		Role   user.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, login.UserID, me.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := makeApp()

	status, _ := send(t, app, "POST", "/auth/register", registerBody, "")
	require.Equal(t, fiber.StatusCreated, status)

	dup := strings.Replace(registerBody, `"username": "lina"`, `"username": "lina2"`, 1)
	status, env := send(t, app, "POST", "/auth/register", dup, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Email already exists.", env.Message)
}

func TestRegister_InvalidPayload(t *testing.T) {
	app := makeApp()

	status, env := send(t, app, "POST", "/auth/register", `{"username":"x"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, response.StatusError, env.Status)
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	app := makeApp()
	status, _ := send(t, app, "POST", "/auth/register", registerBody, "")
	require.Equal(t, fiber.StatusCreated, status)

	wrongStatus, wrong := send(t, app, "POST", "/auth/login", `{"emailOrUsername":"lina","password":"nope"}`, "")
	unknownStatus, unknown := send(t, app, "POST", "/auth/login", `{"emailOrUsername":"ghost","password":"secret1"}`, "")

	assert.Equal(t, fiber.StatusUnauthorized, wrongStatus)
	assert.Equal(t, fiber.StatusUnauthorized, unknownStatus)
	assert.Equal(t, wrong.Message, unknown.Message)
}

func TestCheckEndpoints(t *testing.T) {
	app := makeApp()
	status, _ := send(t, app, "POST", "/auth/register", registerBody, "")
	require.Equal(t, fiber.StatusCreated, status)

	status, env := send(t, app, "GET", "/auth/check-email?email=LINA@example.com", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"isAvailable":false`)

	status, env = send(t, app, "GET", "/auth/check-username?username=free_name", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"isAvailable":true`)

	status, _ = send(t, app, "GET", "/auth/check-email?email=broken", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = send(t, app, "GET", "/auth/check-username", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMiddleware_RejectsMissingAndExpiredTokens(t *testing.T) {
	app := makeApp()

	status, env := send(t, app, "GET", "/api/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, response.StatusError, env.Status)

	issuer := NewIssuer(testSecret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := issuer.Issue(user.User{ID: 1, Email: "a@b.c", Role: user.RoleUser})
	require.NoError(t, err)

	status, _ = send(t, app, "GET", "/api/me", "", expired)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	forged, err := NewIssuer("other-secret", time.Hour).Issue(user.User{ID: 1})
	require.NoError(t, err)
	status, _ = send(t, app, "GET", "/api/me", "", forged)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestIssue_ClaimsShape(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	signed, err := issuer.Issue(user.User{ID: 42, Email: "x@y.z", Role: user.RoleAdmin})
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte(testSecret), nil },
		jwt.WithoutClaimsValidation())
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["userId"])
	assert.Equal(t, "x@y.z", claims["email"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.Equal(t, float64(fixed.Add(24*time.Hour).Unix()), claims["exp"])
}

func TestClaimsFromCtx_InjectedToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(ContextKey, &jwt.Token{Claims: jwt.MapClaims{"userId": 9, "role": "MODERATOR"}})
		claims, err := ClaimsFromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(claims)
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `"UserID":9`)
	assert.Contains(t, string(body), `"Role":"MODERATOR"`)
}
