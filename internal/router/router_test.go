package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	jwtauth "pet-adoption-economy/internal/adapters/auth/jwt"
	"pet-adoption-economy/internal/router"
)

type userBody struct {
	ID        int64 `json:"id"`
	Budget    int   `json:"budget"`
	Inventory struct {
		Food  int `json:"food"`
		Toy   int `json:"toy"`
		Treat int `json:"treat"`
	} `json:"inventory"`
	AdoptedPets []int64 `json:"adoptedPets"`
}

type petBody struct {
	ID        int64  `json:"id"`
	Adopted   bool   `json:"adopted"`
	AdoptedBy *int64 `json:"adoptedBy"`
	Hunger    int    `json:"hunger"`
	Happiness int    `json:"happiness"`
}

type resultBody struct {
	Message string   `json:"message"`
	User    userBody `json:"user"`
	Pet     *petBody `json:"pet"`
}

const adminID = "100"

func TestHTTP_EndToEnd_AdoptCareReturn(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// 1) Registro (modo dev: sin token)
	userID := register(t, ts.URL, "Ana", "ana@example.com")
	otherID := register(t, ts.URL, "Bob", "bob@example.com")

	// 2) Admin crea mascota; un usuario común no puede
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets", userID, map[string]any{"name": "Nope", "type": "puppy", "breed": "x"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 creating pet as non-admin, got %d", st)
		}
	}
	petID := createPet(t, ts.URL, map[string]any{
		"name":  "Milo",
		"type":  "puppy",
		"breed": "Beagle",
		"age":   2,
	})

	// 3) Catálogo con filtro
	{
		st, body := doReq(t, ts.URL, "GET", "/pets?type=puppy", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing pets, got %d body=%s", st, string(body))
		}
		var list []petBody
		mustDecode(t, body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 puppy, got %d", len(list))
		}
		st, _ = doReq(t, ts.URL, "GET", "/pets?type=kitten", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing kittens, got %d", st)
		}
	}

	// 4) Adopción sin auth => 401; con auth => kit de bienvenida
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/adopt", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 adopting anonymously, got %d", st)
		}

		res := doResult(t, ts.URL, "POST", "/pets/"+petID+"/adopt", userID, nil, http.StatusOK)
		if res.Pet == nil || !res.Pet.Adopted {
			t.Fatalf("expected adopted pet in response, got %+v", res.Pet)
		}
		if res.User.Inventory.Food != 5 || res.User.Inventory.Toy != 3 || res.User.Inventory.Treat != 2 {
			t.Fatalf("unexpected welcome kit: %+v", res.User.Inventory)
		}
	}

	// 5) Otro usuario no puede adoptarla ni cuidarla
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/adopt", otherID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 adopting adopted pet, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/actions", otherID, map[string]any{"action": "feed"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 feeding someone else's pet, got %d", st)
		}
	}

	// 6) Alimentar pagando: 150 - 5
	{
		res := doResult(t, ts.URL, "POST", "/pets/"+petID+"/actions", userID, map[string]any{"action": "feed"}, http.StatusOK)
		if res.User.Budget != 145 || res.Pet.Hunger != 30 || res.Pet.Happiness != 55 {
			t.Fatalf("unexpected state after feed: budget=%d pet=%+v", res.User.Budget, res.Pet)
		}
	}

	// 7) Jugar usando inventario por /actions genérico
	{
		res := doResult(t, ts.URL, "POST", "/actions", userID, map[string]any{
			"petId": mustAtoi(t, petID), "action": "play", "useInventory": true,
		}, http.StatusOK)
		if res.User.Budget != 145 || res.User.Inventory.Toy != 2 {
			t.Fatalf("unexpected state after play: %+v", res.User)
		}
	}

	// 8) Acción desconocida
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/actions", userID, map[string]any{"action": "dance"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown action, got %d", st)
		}
	}

	// 9) Shop
	{
		st, body := doReq(t, ts.URL, "GET", "/shop", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"treat"`) {
			t.Fatalf("expected shop catalog, got %d body=%s", st, string(body))
		}
		res := doResult(t, ts.URL, "POST", "/shop/buy", userID, map[string]any{"item": "treat"}, http.StatusOK)
		if res.User.Budget != 142 || res.User.Inventory.Treat != 3 {
			t.Fatalf("unexpected state after buy: %+v", res.User)
		}
		st, _ = doReq(t, ts.URL, "POST", "/shop/buy", userID, map[string]any{"item": "bone"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown item, got %d", st)
		}
	}

	// 10) Devolver: fee 20, se descuenta inventario
	{
		res := doResult(t, ts.URL, "POST", "/pets/"+petID+"/return", userID, nil, http.StatusOK)
		if res.User.Budget != 122 || len(res.User.AdoptedPets) != 0 || res.Pet.Adopted {
			t.Fatalf("unexpected state after return: user=%+v pet=%+v", res.User, res.Pet)
		}
	}

	// 11) /auth/me refleja el estado persistido
	{
		st, body := doReq(t, ts.URL, "GET", "/auth/me", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 me, got %d", st)
		}
		if strings.Contains(string(body), "passwordHash") || strings.Contains(string(body), "secret1") {
			t.Fatalf("me leaks credentials: %s", string(body))
		}
		var me userBody
		mustDecode(t, body, &me)
		if me.Budget != 122 {
			t.Fatalf("expected persisted budget 122, got %d", me.Budget)
		}
	}

	// 12) Auditoría: el usuario ve lo suyo, el admin ve todo
	{
		st, body := doReq(t, ts.URL, "GET", "/audit", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 audit, got %d", st)
		}
		var entries []map[string]any
		mustDecode(t, body, &entries)
		// adopt, feed, play, purchase, return
		if len(entries) != 5 {
			t.Fatalf("expected 5 audit entries, got %d body=%s", len(entries), string(body))
		}
		if entries[0]["action"] != "return" {
			t.Fatalf("expected newest first, got %v", entries[0]["action"])
		}

		st, body = doReq(t, ts.URL, "GET", "/audit", otherID, nil)
		if st != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("expected empty audit for other user, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_ResetRequiresAdmin(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	userID := register(t, ts.URL, "Ana", "ana@example.com")
	petID := createPet(t, ts.URL, map[string]any{"name": "Luna", "type": "kitten", "breed": "Siamese"})
	doResult(t, ts.URL, "POST", "/pets/"+petID+"/adopt", userID, nil, http.StatusOK)

	st, _ := doReq(t, ts.URL, "POST", "/pets/reset", userID, nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 reset by non-admin, got %d", st)
	}

	st, body := doReqAs(t, ts.URL, "POST", "/pets/reset", adminID, "admin", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 reset by admin, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/pets/"+petID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get pet, got %d", st)
	}
	var p petBody
	mustDecode(t, body, &p)
	if p.Adopted {
		t.Fatalf("expected pet unadopted after reset")
	}

	st, body = doReq(t, ts.URL, "GET", "/auth/me", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 me, got %d", st)
	}
	var me userBody
	mustDecode(t, body, &me)
	if len(me.AdoptedPets) != 0 {
		t.Fatalf("expected adoptedPets cleared, got %v", me.AdoptedPets)
	}
}

func TestHTTP_NotFoundAndValidation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	userID := register(t, ts.URL, "Ana", "ana@example.com")

	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{"GET", "/pets/999", nil, http.StatusNotFound},
		{"GET", "/pets/abc", nil, http.StatusNotFound},
		{"GET", "/pets?type=dragon", nil, http.StatusBadRequest},
		{"POST", "/pets/999/adopt", nil, http.StatusNotFound},
		{"POST", "/actions", map[string]any{"action": "feed"}, http.StatusBadRequest},
		{"POST", "/shop/buy", map[string]any{"item": "toy"}, http.StatusOK},
	}
	for _, c := range cases {
		st, body := doReq(t, ts.URL, c.method, c.path, userID, c.body)
		if st != c.want {
			t.Fatalf("%s %s: expected %d, got %d body=%s", c.method, c.path, c.want, st, string(body))
		}
	}

	// email duplicado => 409
	st, _ := doReq(t, ts.URL, "POST", "/auth/register", "", map[string]any{
		"name": "Ana", "email": "ANA@example.com", "password": "secret1",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 duplicate email, got %d", st)
	}
}

func TestHTTP_BearerTokens(t *testing.T) {
	tokens, err := jwtauth.New("0123456789abcdef", time.Hour, "test")
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: tokens,
		TokenIssuer:  tokens,
		AdminEmails:  []string{"boss@example.com"},
	}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "POST", "/auth/register", "", map[string]any{
		"name": "Boss", "email": "boss@example.com", "password": "secret1",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"email": "boss@example.com", "password": "secret1",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var session struct {
		Token string `json:"token"`
	}
	mustDecode(t, body, &session)
	if session.Token == "" {
		t.Fatalf("expected token in login response")
	}

	st, _ = doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"email": "boss@example.com", "password": "wrong-pass",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad password, got %d", st)
	}

	// el header de debug no sirve cuando hay verifier
	st, _ = doReq(t, ts.URL, "GET", "/auth/me", "1", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with debug header in token mode, got %d", st)
	}

	req, _ := http.NewRequest("POST", ts.URL+"/pets", bytes.NewReader([]byte(`{"name":"Rex","type":"other","breed":"Iguana"}`)))
	req.Header.Set("Authorization", "Bearer "+session.Token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 admin create via token, got %d", res.StatusCode)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected ok health, got %d %q", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), "http_requests_total") {
		t.Fatalf("expected metrics exposition, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func register(t *testing.T, baseURL, name, email string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret1",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	var out struct {
		User userBody `json:"user"`
	}
	mustDecode(t, body, &out)
	if out.User.Budget != 150 {
		t.Fatalf("expected registration budget 150, got %d", out.User.Budget)
	}
	return strconv.FormatInt(out.User.ID, 10)
}

func createPet(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReqAs(t, baseURL, "POST", "/pets", adminID, "admin", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var p petBody
	mustDecode(t, body, &p)
	if p.ID <= 0 {
		t.Fatalf("expected pet id, got %d", p.ID)
	}
	return strconv.FormatInt(p.ID, 10)
}

func doResult(t *testing.T, baseURL, method, path, debugUserID string, body any, want int) resultBody {
	t.Helper()

	st, raw := doReq(t, baseURL, method, path, debugUserID, body)
	if st != want {
		t.Fatalf("%s %s: expected %d, got %d body=%s", method, path, want, st, string(raw))
	}
	var res resultBody
	mustDecode(t, raw, &res)
	return res
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()
	return doReqAs(t, baseURL, method, path, debugUserID, "", body)
}

func doReqAs(t *testing.T, baseURL, method, path, debugUserID, role string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if role != "" {
		req.Header.Set("X-Debug-Role", role)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
}

func mustAtoi(t *testing.T, s string) int64 {
	t.Helper()
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("atoi %q: %v", s, err)
	}
	return n
}
