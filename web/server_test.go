package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"goplot/render"
	"goplot/storage"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []storage.RenderRecord
	err     error
}

func (f *fakeRecorder) InsertRender(record storage.RenderRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, record)
	return int64(len(f.records)), nil
}

func newTestServer(t *testing.T, recorder Recorder) *httptest.Server {
	t.Helper()
	opts := Options{Render: render.Options{Width: 4, Height: 3, Bins: 5}}
	if recorder != nil {
		opts.Recorder = recorder
	}
	ts := httptest.NewServer(NewServer(opts))
	t.Cleanup(ts.Close)
	return ts
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func upload(t *testing.T, ts *httptest.Server, filename, content, format string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if format != "" {
		if err := writer.WriteField("format", format); err != nil {
			t.Fatalf("write format field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/upload", &body)
	if err != nil {
		t.Fatalf("build upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := noRedirectClient().Do(req)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func uploadTable(t *testing.T, ts *httptest.Server, filename, content string) string {
	t.Helper()
	resp := upload(t, ts, filename, content, "")
	if resp.StatusCode != http.StatusSeeOther {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 303, got %d: %s", resp.StatusCode, body)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/table/") {
		t.Fatalf("unexpected redirect location: %q", location)
	}
	return location
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestServer_UploadShowsTablePage(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	location := uploadTable(t, ts, "sales.csv", "month;revenue;cost\n1;10,5;4\n2;12;5\n3;9;3\n")

	resp, body := get(t, ts.URL+location)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	page := string(body)
	for _, want := range []string{"sales.csv", "revenue", "delimiter: semicolon", "chart.png?kind=line", "Statistics"} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected table page to contain %q", want)
		}
	}

	_, index := get(t, ts.URL+"/")
	if !strings.Contains(string(index), "sales.csv") {
		t.Fatalf("expected index to list uploaded table")
	}
}

func TestServer_ChartRendersPNGAndRecordsHistory(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	ts := newTestServer(t, recorder)
	location := uploadTable(t, ts, "data.txt", "# header comment\n1 2 3\n2 4 6\n3 8 9\n")

	for _, query := range []string{"kind=line", "kind=scatter&x=col1&y=col3", "kind=bar", "kind=hist", "kind=pie&title=Share"} {
		resp, body := get(t, ts.URL+location+"/chart.png?"+query)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", query, resp.StatusCode, body)
		}
		if got := resp.Header.Get("Content-Type"); got != "image/png" {
			t.Fatalf("%s: unexpected content type %q", query, got)
		}
		if _, err := png.Decode(bytes.NewReader(body)); err != nil {
			t.Fatalf("%s: decode png: %v", query, err)
		}
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.records) != 5 {
		t.Fatalf("expected 5 history rows, got %d", len(recorder.records))
	}
	first := recorder.records[0]
	if first.SourceFile != "data.txt" || first.Target != "web" || first.Title != "Chart from file: data.txt" {
		t.Fatalf("unexpected history record: %+v", first)
	}
	if recorder.records[4].Title != "Share" {
		t.Fatalf("expected title override, got %q", recorder.records[4].Title)
	}
}

func TestServer_ChartErrorStatuses(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeRecorder{err: errors.New("history unavailable")})
	single := uploadTable(t, ts, "single.csv", "v\n1\n2\n")
	labels := uploadTable(t, ts, "labels.csv", "name,share\na,x\nb,y\n")

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "unknown table", path: "/table/does-not-exist/chart.png", status: http.StatusNotFound},
		{name: "unknown kind", path: single + "/chart.png?kind=radar", status: http.StatusUnprocessableEntity},
		{name: "too few columns", path: single + "/chart.png?kind=line", status: http.StatusUnprocessableEntity},
		{name: "unknown column", path: labels + "/chart.png?kind=bar&x=missing", status: http.StatusUnprocessableEntity},
		{name: "non numeric values", path: labels + "/chart.png?kind=pie", status: http.StatusInternalServerError},
		{name: "history failure does not block chart", path: single + "/chart.png?kind=histogram", status: http.StatusOK},
	}

	for _, tc := range tests {
		resp, body := get(t, ts.URL+tc.path)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, resp.StatusCode, body)
		}
	}
}

func TestServer_UploadErrors(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)

	resp := upload(t, ts, "broken.xlsx", "this is not a workbook", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt workbook, got %d", resp.StatusCode)
	}

	resp = upload(t, ts, "empty.csv", "# only a comment\n", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty table, got %d", resp.StatusCode)
	}

	resp = upload(t, ts, "data.bin", "1,2\n3,4\n", "parquet")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/upload", strings.NewReader(""))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	missing, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload without file: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", missing.StatusCode)
	}
}

func TestServer_APITable(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	location := uploadTable(t, ts, "cities.csv", "city,temp\nOslo,1\nRome,3\nOslo,2\n")
	id := strings.TrimPrefix(location, "/table/")

	resp, body := get(t, ts.URL+"/api/table/"+id)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var payload apiTable
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode api response: %v", err)
	}
	if payload.ID != id || payload.Rows != 3 || len(payload.Columns) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Columns[0].Top != "Oslo" || payload.Columns[0].Freq != 2 {
		t.Fatalf("unexpected categorical stats: %+v", payload.Columns[0])
	}
	if payload.Columns[1].Stats["mean"] != 2 {
		t.Fatalf("unexpected numeric stats: %+v", payload.Columns[1])
	}

	resp, _ = get(t, ts.URL+"/api/table/unknown")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, body = get(t, ts.URL+"/api/tables")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "cities.csv") {
		t.Fatalf("unexpected table list: %d %s", resp.StatusCode, body)
	}
}

func TestServer_ConcurrentChartRequests(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeRecorder{})
	location := uploadTable(t, ts, "data.csv", "x,y\n1,2\n2,3\n3,5\n")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(ts.URL + location + "/chart.png?kind=scatter")
			if err != nil {
				errs <- err
				return
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- errors.New(resp.Status)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent chart request failed: %v", err)
	}
}
