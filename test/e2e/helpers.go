//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/linkshelf/internal/api/handlers"
	"github.com/cloo-solutions/linkshelf/internal/fetch"
	"github.com/cloo-solutions/linkshelf/internal/jobs"
	"github.com/cloo-solutions/linkshelf/internal/lock"
	"github.com/cloo-solutions/linkshelf/internal/openai"
	"github.com/cloo-solutions/linkshelf/internal/repository"
	"github.com/cloo-solutions/linkshelf/internal/server"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/cloo-solutions/linkshelf/internal/storage"
	"github.com/cloo-solutions/linkshelf/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	RedisC       *testutil.RedisContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	Pages        *httptest.Server
	AI           *FakeAI
	BinaryDir    string
	HTTPClient   *http.Client
}

// FakeAI serves the chat completion and embedding endpoints of the OpenAI API
type FakeAI struct {
	Server *httptest.Server
	// Answer is returned as the assistant message of every completion
	Answer atomic.Value
}

func newFakeAI() *FakeAI {
	ai := &FakeAI{}
	ai.Answer.Store(`{"title":"Go concurrency patterns","summary":"Explains pipelines and fan-out in Go.","tags":["go","concurrency","patterns"],"source":"Example Blog","platform":"blog","content_type":"article"}`)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		answer, _ := json.Marshal(ai.Answer.Load().(string))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}]}`, answer)
	})
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		values := make([]string, openai.DefaultEmbeddingDimensions)
		for i := range values {
			values[i] = "0.01"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[%s]}],"model":"test"}`, strings.Join(values, ","))
	})
	ai.Server = httptest.NewServer(mux)
	return ai
}

// newPageServer serves small HTML pages keyed by path
func newPageServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>%s</title><script>var x = 1;</script></head>
<body><h1>Article %s</h1><p>Pipelines connect stages with channels.</p></body></html>`, r.URL.Path, r.URL.Path)
	}))
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	redisC := testutil.NewRedisContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "linkshelf-e2e",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	locker, err := lock.NewRedisLocker(ctx, lock.RedisConfig{Addr: redisC.Addr()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		RedisC:     redisC,
		Pool:       pool,
		Pages:      newPageServer(),
		AI:         newFakeAI(),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	env.ServerURL, env.ServerCloser = startServer(t, pool, s3Client, locker, env.AI, port)
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pages != nil {
		e.Pages.Close()
	}
	if e.AI != nil {
		e.AI.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RedisC != nil {
		e.RedisC.Terminate(e.Ctx)
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// PageURL returns the URL of a test page
func (e *E2ETestEnv) PageURL(path string) string {
	return e.Pages.URL + path
}

// BuildBinaries builds the linkshelf and linkshelfd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "linkshelf-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, name := range []string{"linkshelfd", "linkshelf"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

// RunLinkshelf runs the linkshelf CLI against the test server
func (e *E2ETestEnv) RunLinkshelf(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "linkshelf"), args...)
	cmd.Dir = e.BinaryDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("LINKSHELF_API_URL=%s", e.ServerURL),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", e.BinaryDir),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Get performs a GET request and decodes the JSON body into out
func (e *E2ETestEnv) Get(path string, out interface{}) int {
	return e.do(http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response into out
func (e *E2ETestEnv) Post(path string, body, out interface{}) int {
	return e.do(http.MethodPost, path, body, out)
}

func (e *E2ETestEnv) do(method, path string, body, out interface{}) int {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			e.T.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, locker *lock.RedisLocker, ai *FakeAI, port int) (string, func()) {
	logger := zerolog.Nop()

	itemRepo := repository.NewItemRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:  "sk-e2e",
		BaseURL: ai.Server.URL + "/v1",
		Timeout: 5 * time.Second,
	})
	extractor := service.NewExtractor(fetch.New(fetch.Config{Timeout: 5 * time.Second}, logger), aiClient, "English", logger)

	ingestSvc := service.NewIngestService(itemRepo, repository.NewTxRunner(pool), extractor, logger,
		service.WithSaveLocker(locker),
		service.WithSnapshotStore(s3Client),
	)
	itemSvc := service.NewItemService(itemRepo, s3Client)

	worker := jobs.NewWorker(
		jobs.NewEmbeddingWorker(embeddingJobRepo, service.NewEmbeddingService(aiClient, itemRepo), logger),
		200*time.Millisecond,
		logger,
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go worker.Start(workerCtx)

	router := server.NewRouter(server.RouterConfig{
		Logger:      logger,
		SaveHandler: handlers.NewSaveHandler(ingestSvc),
		ItemHandler: handlers.NewItemHandler(itemSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		stopWorker()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		locker.Close()
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
