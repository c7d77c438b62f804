package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/internal/repository"
	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxUpload = 1 << 20

type recordingStorage struct {
	mu       sync.Mutex
	uploaded []string
}

func (s *recordingStorage) Upload(_ context.Context, key string, u storage.Upload) (string, error) {
	if _, err := io.ReadAll(u.Body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded = append(s.uploaded, key)
	return "https://cdn.test/" + key, nil
}

func (s *recordingStorage) Delete(context.Context, string) error {
	return nil
}

type fixture struct {
	store   *docstore.MemoryStore
	objects *recordingStorage
	factory *viewmodel.Factory
	valid   *validator.CustomValidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := docstore.NewMemoryStore()
	objects := &recordingStorage{}
	users := repository.NewUserRepository(store, log)
	insurers := repository.NewInsurerRepository(store, log)
	f := &fixture{
		store:   store,
		objects: objects,
		valid:   validator.NewValidator(),
		factory: &viewmodel.Factory{
			Users:      users,
			Agents:     repository.NewAgentRepository(store, log),
			Insurers:   insurers,
			Insurances: repository.NewInsuranceRepository(store, objects, log),
			Posts:      repository.NewPostRepository(store, objects, log),
			Messages:   repository.NewMessageRepository(store, log),
			Authors:    viewmodel.NewAuthorResolver(users, insurers, "https://cdn.test/avatar.png", log),
			Log:        log,
		},
	}
	t.Cleanup(func() { store.Close() })
	return f
}

// as puts the claims AuthMiddleware would set on the request.
func as(req *http.Request, profileID string, role entity.Role) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ProfileIDKey, profileID)
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	return req.WithContext(ctx)
}

func serve(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, response.Response) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var body response.Response
	json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, image []byte, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAgentHandlerCRUD(t *testing.T) {
	f := newFixture(t)
	agents := f.factory.NewAgents()
	require.NoError(t, agents.StartRealtimeUpdates(context.Background()))
	defer agents.Close()

	h := NewAgentHandler(agents, f.valid)
	r := mux.NewRouter()
	r.HandleFunc("/agents", h.GetAll).Methods(http.MethodGet)
	r.HandleFunc("/agents", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/agents/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/agents/{id}", h.Delete).Methods(http.MethodDelete)

	payload := map[string]string{
		"name": "Ana", "email": "Ana@Agency.mx", "phone": "5512345678",
		"company": "Seguros Sur", "licenseNumber": "L-1",
	}
	rec, body := serve(r, jsonRequest(http.MethodPost, "/agents", payload))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body.Data.(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "ana@agency.mx", created["email"])

	rec, body = serve(r, httptest.NewRequest(http.MethodGet, "/agents", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Data, 1)

	payload["name"] = "Ana Maria"
	rec, _ = serve(r, jsonRequest(http.MethodPut, "/agents/"+id, payload))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana Maria", agents.Agents()[0].Name)

	payload["phone"] = "123"
	rec, _ = serve(r, jsonRequest(http.MethodPut, "/agents/"+id, payload))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(r, httptest.NewRequest(http.MethodDelete, "/agents/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = serve(r, httptest.NewRequest(http.MethodDelete, "/agents/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/agents/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsuranceHandlerMultipart(t *testing.T) {
	f := newFixture(t)
	insurances := f.factory.NewInsurances()
	h := NewInsuranceHandler(insurances, f.valid, maxUpload)
	r := mux.NewRouter()
	r.HandleFunc("/insurances", h.GetAll).Methods(http.MethodGet)
	r.HandleFunc("/insurances", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/insurances/{type}/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/insurances/{type}/{id}", h.Update).Methods(http.MethodPut)

	fields := map[string]string{"name": "Auto Plus", "type": "auto", "price": "1500.50", "active": "true"}
	rec, body := serve(r, multipartRequest(t, http.MethodPost, "/insurances", fields, []byte("png"), "image/png"))
	require.Equal(t, http.StatusCreated, rec.Code, body.Message)
	created := body.Data.(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "https://cdn.test/"+entity.InsuranceImageKey(id), created["image"])
	assert.Equal(t, []string{entity.InsuranceImageKey(id)}, f.objects.uploaded)

	rec, body = serve(r, httptest.NewRequest(http.MethodGet, "/insurances?type=auto", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Data, 1)
	rec, body = serve(r, httptest.NewRequest(http.MethodGet, "/insurances?type=life", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Data)

	bad := map[string]string{"name": "X", "type": "auto", "price": "cheap"}
	rec, _ = serve(r, multipartRequest(t, http.MethodPost, "/insurances", bad, nil, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(r, multipartRequest(t, http.MethodPost, "/insurances", fields, []byte("%PDF"), "application/pdf"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	moved := map[string]string{"name": "Auto Plus", "type": "life", "price": "1500.50"}
	rec, _ = serve(r, multipartRequest(t, http.MethodPut, "/insurances/auto/"+id, moved, nil, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	fields["price"] = "99"
	fields["image"] = created["image"].(string)
	rec, _ = serve(r, multipartRequest(t, http.MethodPut, "/insurances/auto/"+id, fields, nil, ""))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := insurances.Find(context.Background(), "auto", id)
	require.NoError(t, err)
	assert.Equal(t, "99", got.Price.String())
	assert.Equal(t, created["image"], got.Image, "image kept without a new file")
}

func TestPostHandlerOwnership(t *testing.T) {
	f := newFixture(t)
	posts := f.factory.NewPosts()
	require.NoError(t, posts.StartRealtimeUpdates(context.Background()))
	defer posts.Close()

	h := NewPostHandler(posts, f.valid, maxUpload)
	r := mux.NewRouter()
	r.HandleFunc("/posts", h.GetAll).Methods(http.MethodGet)
	r.HandleFunc("/posts", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/posts/mine", h.Mine).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/posts/{id}", h.Delete).Methods(http.MethodDelete)

	fields := map[string]string{"titulo": "Auto nuevo", "descripcion": "Cobertura amplia", "tipo": "Autos"}
	rec, body := serve(r, as(multipartRequest(t, http.MethodPost, "/posts", fields, nil, ""), "u1", entity.RoleClient))
	require.Equal(t, http.StatusCreated, rec.Code, body.Message)
	id := body.Data.(map[string]interface{})["id"].(string)

	rec, _ = serve(r, multipartRequest(t, http.MethodPost, "/posts", fields, nil, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = serve(r, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code, body.Message)
	assert.Equal(t, "Auto nuevo", body.Data.(map[string]interface{})["titulo"])

	rec, body = serve(r, as(httptest.NewRequest(http.MethodGet, "/posts/mine", nil), "u1", entity.RoleClient))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Data, 1)
	item := body.Data.([]interface{})[0].(map[string]interface{})
	assert.Equal(t, viewmodel.DefaultAuthorName, item["authorName"])

	rec, body = serve(r, as(httptest.NewRequest(http.MethodGet, "/posts/mine", nil), "u2", entity.RoleClient))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Data)

	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/posts?tipo=Viajes", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, body = serve(r, httptest.NewRequest(http.MethodGet, "/posts?tipo=Autos", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Data, 1)

	rec, _ = serve(r, as(httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil), "u2", entity.RoleClient))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = serve(r, as(httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil), "staff", entity.RoleEditor))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, posts.Feed())

	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostHandlerUpdateKeepsDateAndImage(t *testing.T) {
	f := newFixture(t)
	posts := f.factory.NewPosts()
	h := NewPostHandler(posts, f.valid, maxUpload)
	r := mux.NewRouter()
	r.HandleFunc("/posts", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.Update).Methods(http.MethodPut)

	fields := map[string]string{"titulo": "Auto nuevo", "descripcion": "Cobertura amplia", "tipo": "Autos"}
	rec, body := serve(r, as(multipartRequest(t, http.MethodPost, "/posts", fields, []byte("png"), "image/png"), "u1", entity.RoleClient))
	require.Equal(t, http.StatusCreated, rec.Code, body.Message)
	created := body.Data.(map[string]interface{})
	id := created["id"].(string)
	require.NotEmpty(t, created["date"])
	require.NotEmpty(t, created["image"])

	fields["titulo"] = "Auto usado"
	rec, body = serve(r, as(multipartRequest(t, http.MethodPut, "/posts/"+id, fields, nil, ""), "u1", entity.RoleClient))
	require.Equal(t, http.StatusOK, rec.Code, body.Message)

	rec, body = serve(r, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stored := body.Data.(map[string]interface{})
	assert.Equal(t, "Auto usado", stored["titulo"])
	assert.Equal(t, created["date"], stored["date"])
	assert.Equal(t, created["image"], stored["image"])
}

func userRequest(email string, role entity.Role) map[string]string {
	return map[string]string{
		"firstName": "Ana",
		"lastName":  "Lopez",
		"email":     email,
		"phone":     "5512345678",
		"role":      string(role),
		"birthDate": "1990-01-01",
	}
}

func insurerRequest(email string) map[string]string {
	return map[string]string{
		"firstName":     "Luis",
		"lastName":      "Perez",
		"email":         email,
		"phone":         "5598765432",
		"fiscalId":      "PELU900101AB1",
		"licenseNumber": "LIC-1",
		"companyName":   "Seguros Perez",
		"birthDate":     "1990-01-01",
	}
}

func TestUserHandlerEmailChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := &entity.User{FirstName: "Ana", LastName: "Lopez", Email: "ana@x.co", Phone: "5512345678", Role: entity.RoleClient, BirthDate: "1990-01-01"}
	require.NoError(t, f.factory.Users.Add(ctx, ana))

	identity := usecase.NewIdentityUsecase(f.factory.Log, f.factory.Users, f.factory.Insurers)
	h := NewUserHandler(f.factory.NewUsers(), identity, f.valid)
	r := mux.NewRouter()
	r.HandleFunc("/users/{id}", h.Update).Methods(http.MethodPut)

	rec, body := serve(r, as(jsonRequest(http.MethodPut, "/users/"+ana.ID, userRequest("other@x.co", entity.RoleClient)), ana.ID, entity.RoleClient))
	assert.Equal(t, http.StatusBadRequest, rec.Code, body.Message)
	stored, err := f.factory.Users.FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.co", stored.Email)

	req := userRequest("ANA@x.co", entity.RoleClient)
	req["firstName"] = "Anita"
	rec, body = serve(r, as(jsonRequest(http.MethodPut, "/users/"+ana.ID, req), ana.ID, entity.RoleClient))
	require.Equal(t, http.StatusOK, rec.Code, body.Message)
	stored, err = f.factory.Users.FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anita", stored.FirstName)

	rec, body = serve(r, as(jsonRequest(http.MethodPut, "/users/"+ana.ID, userRequest("other@x.co", entity.RoleClient)), "staff", entity.RoleEditor))
	require.Equal(t, http.StatusOK, rec.Code, body.Message)
	stored, err = f.factory.Users.FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "other@x.co", stored.Email)
}

func TestUserHandlerStaffProfilesNeedAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	identity := usecase.NewIdentityUsecase(f.factory.Log, f.factory.Users, f.factory.Insurers)
	h := NewUserHandler(f.factory.NewUsers(), identity, f.valid)
	r := mux.NewRouter()
	r.HandleFunc("/users", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", h.Delete).Methods(http.MethodDelete)

	rec, _ := serve(r, as(jsonRequest(http.MethodPost, "/users", userRequest("boss@x.co", entity.RoleAdmin)), "editor", entity.RoleEditor))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := serve(r, as(jsonRequest(http.MethodPost, "/users", userRequest("boss@x.co", entity.RoleAdmin)), "admin", entity.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code, body.Message)
	bossID := body.Data.(map[string]interface{})["id"].(string)

	req := userRequest("boss@x.co", entity.RoleAdmin)
	req["firstName"] = "Mallory"
	rec, _ = serve(r, as(jsonRequest(http.MethodPut, "/users/"+bossID, req), "editor", entity.RoleEditor))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(r, as(httptest.NewRequest(http.MethodDelete, "/users/"+bossID, nil), "editor", entity.RoleEditor))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	stored, err := f.factory.Users.FindByID(ctx, bossID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ana", stored.FirstName)

	client := &entity.User{FirstName: "Eva", Email: "eva@x.co", Phone: "5511112222", Role: entity.RoleClient, BirthDate: "1990-01-01"}
	require.NoError(t, f.factory.Users.Add(ctx, client))
	rec, _ = serve(r, as(httptest.NewRequest(http.MethodDelete, "/users/"+client.ID, nil), "editor", entity.RoleEditor))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(r, as(httptest.NewRequest(http.MethodDelete, "/users/"+bossID, nil), "admin", entity.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInsurerHandlerLinksAccountProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := &entity.User{FirstName: "Luis", LastName: "Perez", Email: "ins@x.co", Phone: "5598765432", Role: entity.RoleInsurer, BirthDate: "1990-01-01"}
	require.NoError(t, f.factory.Users.Add(ctx, profile))

	identity := usecase.NewIdentityUsecase(f.factory.Log, f.factory.Users, f.factory.Insurers)
	h := NewInsurerHandler(f.factory.NewInsurers(), f.factory, identity, f.valid)
	r := mux.NewRouter()
	r.HandleFunc("/insurers", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/insurers/{id}", h.Update).Methods(http.MethodPut)

	rec, body := serve(r, as(jsonRequest(http.MethodPost, "/insurers", insurerRequest("ins@x.co")), "staff", entity.RoleEditor))
	require.Equal(t, http.StatusCreated, rec.Code, body.Message)
	assert.Equal(t, profile.ID, body.Data.(map[string]interface{})["id"])

	rec, _ = serve(r, as(jsonRequest(http.MethodPost, "/insurers", insurerRequest("ins@x.co")), "staff", entity.RoleEditor))
	assert.Equal(t, http.StatusConflict, rec.Code)

	req := insurerRequest("ins@x.co")
	req["companyName"] = "Perez y Asociados"
	rec, body = serve(r, as(jsonRequest(http.MethodPut, "/insurers/"+profile.ID, req), profile.ID, entity.RoleInsurer))
	require.Equal(t, http.StatusOK, rec.Code, body.Message)
	stored, err := f.factory.Insurers.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Perez y Asociados", stored.CompanyName)

	rec, _ = serve(r, as(jsonRequest(http.MethodPut, "/insurers/"+profile.ID, insurerRequest("new@x.co")), profile.ID, entity.RoleInsurer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stored, err = f.factory.Insurers.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "ins@x.co", stored.Email)
}

func TestValidationHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.factory.Users.Add(ctx, &entity.User{FirstName: "Ana", Email: "ana@x.co", Phone: "5512345678", Role: entity.RoleClient}))

	h := NewValidationHandler(usecase.NewIdentityUsecase(f.factory.Log, f.factory.Users, f.factory.Insurers), f.valid)

	rec, body := serve(http.HandlerFunc(h.CheckEmail), jsonRequest(http.MethodPost, "/", map[string]string{"email": "ana@x.co"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body.Data.(map[string]interface{})["unique"])

	rec, body = serve(http.HandlerFunc(h.CheckEmail), jsonRequest(http.MethodPost, "/", map[string]string{"email": "new@x.co"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body.Data.(map[string]interface{})["unique"])

	rec, _ = serve(http.HandlerFunc(h.CheckPhone), jsonRequest(http.MethodPost, "/", map[string]string{"phone": "55-1234"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = serve(http.HandlerFunc(h.PasswordStrength), jsonRequest(http.MethodPost, "/", map[string]string{"password": "abc"}))
	require.Equal(t, http.StatusOK, rec.Code)
	strength := body.Data.(map[string]interface{})
	assert.Equal(t, false, strength["valid"])
	assert.Equal(t, true, strength["hasLower"])
}

func TestChatHandler(t *testing.T) {
	f := newFixture(t)
	h := NewChatHandler(f.factory, f.valid)
	r := mux.NewRouter()
	r.HandleFunc("/chat/messages", h.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/chat/messages", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/admin/chats/{userId}/messages", h.Reply).Methods(http.MethodPost)

	rec, _ := serve(r, as(jsonRequest(http.MethodPost, "/chat/messages", map[string]string{"text": "hola"}), "u1", entity.RoleClient))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = serve(r, as(jsonRequest(http.MethodPost, "/admin/chats/u1/messages", map[string]string{"text": "buen dia"}), "staff", entity.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := serve(r, as(httptest.NewRequest(http.MethodGet, "/chat/messages", nil), "u1", entity.RoleClient))
	require.Equal(t, http.StatusOK, rec.Code)
	messages := body.Data.([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, true, messages[0].(map[string]interface{})["isSentByUser"])
	assert.Equal(t, false, messages[1].(map[string]interface{})["isSentByUser"])
	assert.Equal(t, 0, f.store.ActiveWatchers())
}

func readEvent(t *testing.T, lines *bufio.Scanner) (string, string) {
	t.Helper()
	var event, data string
	for lines.Scan() {
		line := lines.Text()
		switch {
		case line == "":
			if event != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	t.Fatalf("stream ended: %v", lines.Err())
	return "", ""
}

func TestStreamAgents(t *testing.T) {
	f := newFixture(t)
	h := NewStreamHandler(f.factory, f.factory.Log)
	srv := httptest.NewServer(http.HandlerFunc(h.Agents))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	event, data := readEvent(t, lines)
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, `"version":1`)
	assert.NotContains(t, data, `"name"`)

	require.NoError(t, f.factory.Agents.Add(context.Background(), &entity.Agent{Name: "Ana"}))
	event, data = readEvent(t, lines)
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, `"name":"Ana"`)

	cancel()
	assert.Eventually(t, func() bool { return f.store.ActiveWatchers() == 0 }, time.Second, 10*time.Millisecond)
}
