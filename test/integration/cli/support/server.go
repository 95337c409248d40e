package support

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/langid/internal/corpus"
	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/server"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
)

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
}

// Close shuts the test server down.
func (w *HTTPTestServerWrapper) Close() {
	w.Server.Close()
	_ = w.TestServer.Close()
}

// startTestHTTPServer serves the detection API over the scenario's corpus.
func (testCtx *TestContext) startTestHTTPServer(cfg server.Config) error {
	if testCtx.CorpusDir == "" {
		return fmt.Errorf("no reference corpus was created")
	}

	tok := tokenizer.Default()
	corpusCfg := corpus.DefaultConfig()
	corpusCfg.Dir = testCtx.CorpusDir

	refs, err := corpus.Load(context.Background(), corpusCfg, tok)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	det, err := detector.New(tok, refs)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}

	srv, err := server.NewServer(cfg, det)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	testCtx.HTTPTestServer = &HTTPTestServerWrapper{
		Server:     httptest.NewServer(mux),
		TestServer: srv,
	}
	return nil
}
