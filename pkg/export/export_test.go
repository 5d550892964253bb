package export

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vgrid/pkg/columns"
	"github.com/vango-dev/vgrid/pkg/grid"
)

func newGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.Config{Columns: []grid.ColumnDef{
		{Template: columns.Index()},
		{Key: "name", Label: "Name", Template: columns.Text("name")},
		{Key: "qty", Template: columns.Number("qty", 0)},
	}})
	if err != nil {
		t.Fatalf("grid.New() error = %v", err)
	}
	t.Cleanup(g.Destroy)
	items := []grid.Item{
		{"name": "alpha", "qty": int64(3)},
		{"name": "beta, gamma", "qty": int64(10)},
	}
	if err := g.CreateAll(items); err != nil {
		t.Fatalf("CreateAll() error = %v", err)
	}
	return g
}

func TestCleanKey(t *testing.T) {
	valid := map[string]string{
		"a.html":     "a.html",
		"/a.html":    "a.html",
		"dir/a.html": "dir/a.html",
	}
	for in, want := range valid {
		got, err := cleanKey(in)
		if err != nil || got != want {
			t.Errorf("cleanKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "  ", "../a", "a/../../b", "a/./b", `a\b`, "dir/"} {
		if _, err := cleanKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("cleanKey(%q) error = %v, want ErrInvalidKey", in, err)
		}
	}
}

func TestDiskStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "out"), 0)
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	loc, err := store.Put(context.Background(), "reports/a.txt", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if want := filepath.Join(dir, "out", "reports", "a.txt"); loc != want {
		t.Errorf("location = %q, want %q", loc, want)
	}
	data, err := os.ReadFile(loc)
	if err != nil || string(data) != "hello" {
		t.Errorf("file = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "out", "reports"))
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %d entries", len(entries))
	}
}

func TestDiskStoreLimits(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "big", "text/plain", strings.NewReader("too long")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized error = %v, want ErrTooLarge", err)
	}
	if _, err := store.Put(ctx, "ok", "text/plain", strings.NewReader("four")); err != nil {
		t.Errorf("exact size error = %v", err)
	}
	if _, err := store.Put(ctx, "../escape", "text/plain", strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("traversal error = %v, want ErrInvalidKey", err)
	}
	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestDiskStorePrune(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir(), 0)
	ctx := context.Background()
	past := time.Now().Add(-2 * time.Hour)
	oldLoc, _ := store.Put(ctx, "users-20200101T000000Z.html", "text/html", strings.NewReader("o"))
	newLoc, _ := store.Put(ctx, "sub/users-20200102T000000Z.csv", "text/csv", strings.NewReader("n"))
	if err := os.Chtimes(oldLoc, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	// Files the exporter never writes, all older than the cutoff.
	foreign := []string{
		"vgrid.json",
		"grids/users.yaml",
		".git/HEAD",
		"main.go",
		"report.csv",
		".cache/users-20200101T000000Z.json",
		".export-123456",
	}
	for _, name := range foreign {
		p := filepath.Join(store.Dir(), filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}
	}

	removed, err := store.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(oldLoc); !os.IsNotExist(err) {
		t.Error("old snapshot survived")
	}
	if _, err := os.Stat(newLoc); err != nil {
		t.Errorf("new snapshot removed: %v", err)
	}
	for _, name := range foreign {
		if _, err := os.Stat(filepath.Join(store.Dir(), filepath.FromSlash(name))); err != nil {
			t.Errorf("%s removed: %v", name, err)
		}
	}
}

func TestIsSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if got := SnapshotName("users", now); got != "users-20240301T123000Z" {
		t.Errorf("SnapshotName() = %q", got)
	}
	tests := []struct {
		key  string
		want bool
	}{
		{SnapshotName("users", now) + ".json", true},
		{"nightly/" + SnapshotName("orders-eu", now) + ".csv", true},
		{SnapshotName("users", now) + ".html", true},
		{SnapshotName("users", now) + ".yaml", false},
		{SnapshotName("users", now), false},
		{"users.json", false},
		{"vgrid.json", false},
		{"users-2024.json", false},
		{".hidden/" + SnapshotName("users", now) + ".json", false},
		{"." + SnapshotName("users", now) + ".json", false},
	}
	for _, tt := range tests {
		if got := IsSnapshot(tt.key); got != tt.want {
			t.Errorf("IsSnapshot(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	objects []types.Object
	deleted []string
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{Contents: f.objects, IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "reports", "grids/", 0)
	loc, err := store.Put(context.Background(), "users.csv", "text/csv", strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if loc != "s3://reports/grids/users.csv" {
		t.Errorf("location = %q", loc)
	}
	if len(client.puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(client.puts))
	}
	in := client.puts[0]
	if aws.ToString(in.Bucket) != "reports" || aws.ToString(in.Key) != "grids/users.csv" {
		t.Errorf("bucket/key = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "text/csv" || aws.ToInt64(in.ContentLength) != 4 {
		t.Errorf("content type/length = %s/%d", aws.ToString(in.ContentType), aws.ToInt64(in.ContentLength))
	}
	if client.bodies[0] != "a,b\n" {
		t.Errorf("body = %q", client.bodies[0])
	}
	if _, ok := in.Metadata["export-time"]; !ok {
		t.Error("missing export-time metadata")
	}
}

func TestS3StoreErrors(t *testing.T) {
	ctx := context.Background()
	store := NewS3Store(&fakeS3{}, "b", "", 2)
	if _, err := store.Put(ctx, "k", "text/plain", strings.NewReader("abc")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized error = %v, want ErrTooLarge", err)
	}

	failure := errors.New("access denied")
	store = NewS3Store(&fakeS3{putErr: failure}, "b", "", 0)
	if _, err := store.Put(ctx, "k", "text/plain", strings.NewReader("abc")); !errors.Is(err, failure) {
		t.Errorf("put error = %v, want wrapped %v", err, failure)
	}
}

func TestS3StorePrune(t *testing.T) {
	now := time.Now()
	old := aws.Time(now.Add(-48 * time.Hour))
	client := &fakeS3{objects: []types.Object{
		{Key: aws.String("grids/users-20200101T000000Z.html"), LastModified: old},
		{Key: aws.String("grids/users-20200102T000000Z.csv"), LastModified: aws.Time(now)},
		{Key: aws.String("grids/users-20200103T000000Z.json")},
		{Key: aws.String("grids/vgrid.json"), LastModified: old},
		{Key: aws.String("grids/users.yaml"), LastModified: old},
		{Key: aws.String("grids/.git/HEAD"), LastModified: old},
		{Key: aws.String("grids/.tmp/users-20200101T000000Z.json"), LastModified: old},
		{Key: aws.String("grids/main.go"), LastModified: old},
	}}
	store := NewS3Store(client, "reports", "grids/", 0)
	removed, err := store.Prune(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if diff := cmp.Diff([]string{"grids/users-20200101T000000Z.html"}, client.deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(S3Config{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	opts := client.Options()
	if opts.Region != "us-east-1" || !opts.UsePathStyle {
		t.Errorf("options = region %q path style %v", opts.Region, opts.UsePathStyle)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("endpoint = %q", aws.ToString(opts.BaseEndpoint))
	}
	creds, err := opts.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if creds.AccessKeyID != "key" || creds.SecretAccessKey != "secret" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestEncodeHTML(t *testing.T) {
	g := newGrid(t)
	exp := NewExporter(&memStore{})
	data, err := exp.Encode(g, FormatHTML)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	html := string(data)
	if !strings.HasPrefix(html, "<table") || !strings.Contains(html, "alpha") || !strings.Contains(html, "beta, gamma") {
		t.Errorf("html = %s", html)
	}
	if strings.Contains(html, "data-hid") {
		t.Errorf("hydration ids leaked into export: %s", html)
	}
}

func TestEncodePage(t *testing.T) {
	g := newGrid(t)
	exp := NewExporter(&memStore{})
	exp.Title = "Users"
	data, err := exp.Encode(g, FormatPage)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	html := string(data)
	for _, want := range []string{"<!DOCTYPE html>", "<title>Users</title>", "<table"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	g := newGrid(t)
	data, err := NewExporter(&memStore{}).Encode(g, FormatCSV)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("csv parse error = %v", err)
	}
	want := [][]string{
		{"Name", "qty"},
		{"alpha", "3"},
		{"beta, gamma", "10"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeJSON(t *testing.T) {
	g := newGrid(t)
	data, err := NewExporter(&memStore{}).Encode(g, FormatJSON)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(data), `"name": "alpha"`) {
		t.Errorf("json = %s", data)
	}
	if _, err := NewExporter(&memStore{}).Encode(g, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestExportAppendsExtension(t *testing.T) {
	g := newGrid(t)
	store := &memStore{}
	loc, err := NewExporter(store).Export(context.Background(), g, FormatCSV, "users")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if loc != "mem://users.csv" || store.contentType != "text/csv; charset=utf-8" {
		t.Errorf("location = %q content type = %q", loc, store.contentType)
	}

	if _, err := NewExporter(store).Export(context.Background(), g, FormatHTML, "grid.htm"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if store.key != "grid.htm" {
		t.Errorf("key = %q, want grid.htm", store.key)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("CSV"); err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(CSV) = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(pdf) error = %v", err)
	}
}

// memStore records the last Put.
type memStore struct {
	key, contentType string
	body             []byte
}

func (s *memStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	s.key, s.contentType = key, contentType
	s.body, _ = io.ReadAll(body)
	return "mem://" + key, nil
}

func (s *memStore) Prune(context.Context, time.Duration) (int, error) { return 0, nil }
