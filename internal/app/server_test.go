package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/neu-csye6225/webapp/internal/config"
	"github.com/neu-csye6225/webapp/internal/handler"
	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/model"
	"github.com/neu-csye6225/webapp/internal/pkg/keycodec"
	"github.com/neu-csye6225/webapp/internal/repository"
	"github.com/neu-csye6225/webapp/internal/service"
	"github.com/neu-csye6225/webapp/internal/ws"
)

type panicRoute struct{}

func (panicRoute) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

// memoryObjects is an in-process object store keyed like the bucket.
type memoryObjects struct {
	mu      sync.Mutex
	codec   *keycodec.Codec
	objects map[string][]byte
}

func (m *memoryObjects) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return m.codec.Locator(key), nil
}

func (m *memoryObjects) Delete(_ context.Context, locator string) error {
	key, err := m.codec.ExtractKey(locator)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type stack struct {
	server  *Server
	objects *memoryObjects
	prom    *metrics.Prometheus
	hub     *ws.Hub
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log := zerolog.Nop()
	ctx := context.Background()

	db, err := repository.NewDB(repository.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:", LogLevel: gormlogger.Silent}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.CloseDB(db) })
	_, err = repository.NewMigrator(db).Migrate(ctx)
	require.NoError(t, err)

	codec, err := keycodec.New("bucket")
	require.NoError(t, err)

	objects := &memoryObjects{codec: codec, objects: map[string][]byte{}}
	prom := metrics.NewPrometheus(nil)

	hub := ws.NewHub(ws.NewUpgrader(nil), log)
	hubCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	go hub.Run(hubCtx)

	files := service.NewFileService(service.FileServiceDeps{
		Objects:     objects,
		Metadata:    repository.NewFileMetadataRepository(db, time.Second),
		Codec:       codec,
		Metrics:     prom,
		Events:      hub,
		Logger:      log,
		MaxFileSize: config.DefaultMaxFileSize,
	})
	health := service.NewHealthService(repository.NewHealthCheckRepository(db, time.Second), prom, log)

	server := NewServer(prom, prom.Handler(), log,
		handler.NewFileHandler(files, prom, log, config.DefaultMaxFileSize),
		handler.NewHealthHandler(health, prom, log),
		handler.NewEventsHandler(hub, prom, log),
		panicRoute{},
	)
	return &stack{server: server, objects: objects, prom: prom, hub: hub}
}

func (s *stack) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, name, contentType string, payload []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/file", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFileLifecycle(t *testing.T) {
	s := newStack(t)

	rr := s.do(uploadRequest(t, "a.txt", "text/plain", []byte("hello")))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created handler.FileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "a.txt", created.FileName)
	assert.True(t, strings.HasPrefix(created.URL, "https://bucket.s3.amazonaws.com/"))
	assert.Equal(t, 1, s.objects.len())

	rr = s.do(httptest.NewRequest(http.MethodGet, "/v1/file/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched handler.FileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	rr = s.do(httptest.NewRequest(http.MethodDelete, "/v1/file/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, s.objects.len())

	rr = s.do(httptest.NewRequest(http.MethodGet, "/v1/file/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(httptest.NewRequest(http.MethodDelete, "/v1/file/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	s := newStack(t)

	rr := s.do(uploadRequest(t, "setup.exe", "application/x-msdownload", []byte("MZ")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, s.objects.len())
}

func TestHealthzWritesToDatabase(t *testing.T) {
	s := newStack(t)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newStack(t)

	s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `webapp_events_total{event="api.health_check.count"} 1`)
	assert.Contains(t, body, `webapp_events_total{event="api.get.healthz.count"} 1`)
	assert.Contains(t, body, `webapp_operation_duration_seconds_count{operation="healthCheck",scope="database"} 1`)
}

func TestRecoveryHandler(t *testing.T) {
	s := newStack(t)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCORSPreflightRequest(t *testing.T) {
	s := newStack(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/file", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rr := s.do(req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Headers"))
}

func TestOptionsWithoutOriginIsMethodNotAllowed(t *testing.T) {
	s := newStack(t)

	for _, path := range []string{"/healthz", "/v1/file"} {
		rr := s.do(httptest.NewRequest(http.MethodOptions, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, path)
	}
}

func TestSwaggerDoc(t *testing.T) {
	s := newStack(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Header.Set("Origin", "http://example.com")

	rr := s.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Body.String(), "/v1/file/{id}")
}

func TestEventStreamReceivesFileEvents(t *testing.T) {
	s := newStack(t)
	srv := httptest.NewServer(s.server.Handler())
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/events", nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool {
		return s.hub.Stats.Connections.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	rr := s.do(uploadRequest(t, "a.txt", "text/plain", []byte("hello")))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created handler.FileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = s.do(httptest.NewRequest(http.MethodDelete, "/v1/file/"+created.ID, nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var uploaded, deleted model.FileEvent
	require.NoError(t, conn.ReadJSON(&uploaded))
	require.NoError(t, conn.ReadJSON(&deleted))

	assert.Equal(t, model.FileUploaded, uploaded.Type)
	assert.Equal(t, created.ID, uploaded.ID.String())
	assert.Equal(t, "a.txt", uploaded.FileName)
	assert.Equal(t, created.URL, uploaded.URL)
	assert.Equal(t, model.FileDeleted, deleted.Type)
	assert.Equal(t, created.ID, deleted.ID.String())
}

func TestEventStreamRequiresUpgrade(t *testing.T) {
	s := newStack(t)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Websocket upgrade required")

	rr = s.do(httptest.NewRequest(http.MethodPost, "/v1/events", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
