package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/langid/internal/server"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) theDetectionServerIsRunning() error {
	return testCtx.startTestHTTPServer(server.Config{CORSOrigin: "*", TopK: 3})
}

func (testCtx *TestContext) theDetectionServerIsRunningWithRequestsPerMinute(limit int) error {
	return testCtx.startTestHTTPServer(server.Config{
		CORSOrigin: "*",
		TopK:       3,
		RateLimit:  server.RateLimitConfig{Enabled: true, RequestsPerMinute: limit},
	})
}

func (testCtx *TestContext) do(method, endpoint, contentType, body string) error {
	if testCtx.HTTPTestServer == nil {
		return errors.New("the detection server is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, testCtx.HTTPTestServer.Server.URL+endpoint, strings.NewReader(body))
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) iGET(endpoint string) error {
	return testCtx.do(http.MethodGet, endpoint, "", "")
}

func (testCtx *TestContext) iPOSTTheJSONTextTo(text, endpoint string) error {
	body, err := json.Marshal(server.DetectRequest{Text: text})
	if err != nil {
		return err
	}
	return testCtx.do(http.MethodPost, endpoint, "application/json", string(body))
}

func (testCtx *TestContext) iPOSTThePlainTextTo(text, endpoint string) error {
	return testCtx.do(http.MethodPost, endpoint, "text/plain", text)
}

func (testCtx *TestContext) theResponseStatusShouldBe(expected int) error {
	if testCtx.LastHTTPStatusCode != expected {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", expected, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) responseJSON() (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &data); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	return data, nil
}

func (testCtx *TestContext) theResponseJSONFieldShouldBe(field, expected string) error {
	data, err := testCtx.responseJSON()
	if err != nil {
		return err
	}
	return checkJSONField(data, field, expected)
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, expected string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != expected {
		return fmt.Errorf("header %s is %q, expected %q", name, got, expected)
	}
	return nil
}

// RegisterServerSteps registers the HTTP API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the detection server is running$`, testCtx.theDetectionServerIsRunning)
	sc.Step(`^the detection server is running with (\d+) requests? per minute$`,
		testCtx.theDetectionServerIsRunningWithRequestsPerMinute)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I POST the JSON text "([^"]*)" to "([^"]*)"$`, testCtx.iPOSTTheJSONTextTo)
	sc.Step(`^I POST the plain text "([^"]*)" to "([^"]*)"$`, testCtx.iPOSTThePlainTextTo)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
}
