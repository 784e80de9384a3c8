package minio

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the path-style subset of the S3 API the store uses: HEAD,
// ranged GET, PUT and DELETE on objects, and ListObjectsV2 on the bucket.
type fakeS3 struct {
	bucket string

	mu      sync.Mutex
	objects map[string][]byte
	puts    map[string]http.Header
	deny    bool
}

func newFakeS3(t *testing.T, bucket string) (*fakeS3, *minio.Client) {
	t.Helper()

	f := &fakeS3{
		bucket:  bucket,
		objects: make(map[string][]byte),
		puts:    make(map[string]http.Header),
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client, err := minio.New(u.Host, &minio.Options{
		Creds:        credentials.NewStaticV4("key", "secret", ""),
		Secure:       false,
		Region:       "us-east-1",
		BucketLookup: minio.BucketLookupPath,
	})
	require.NoError(t, err)
	return f, client
}

func (f *fakeS3) seed(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeS3) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeS3) putHeader(key string) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[key]
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchBucket", key)
		return
	}
	if f.deny {
		writeS3Error(w, r, http.StatusForbidden, "AccessDenied", key)
		return
	}

	if key == "" {
		if r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2" {
			f.list(w, r.URL.Query().Get("prefix"))
			return
		}
		writeS3Error(w, r, http.StatusNotImplemented, "NotImplemented", "")
		return
	}

	switch r.Method {
	case http.MethodHead, http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			writeS3Error(w, r, http.StatusNotFound, "NoSuchKey", key)
			return
		}
		f.serveObject(w, r, data)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, r, http.StatusBadRequest, "IncompleteBody", key)
			return
		}
		// Bodies may arrive aws-chunked; only presence is tracked.
		f.objects[key] = body
		f.puts[key] = r.Header.Clone()
		w.Header().Set("ETag", `"fake"`)
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		if _, ok := f.objects[key]; !ok {
			writeS3Error(w, r, http.StatusNotFound, "NoSuchKey", key)
			return
		}
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeS3Error(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed", key)
	}
}

func (f *fakeS3) serveObject(w http.ResponseWriter, r *http.Request, data []byte) {
	h := w.Header()
	h.Set("ETag", `"fake"`)
	h.Set("Last-Modified", time.Unix(0, 0).UTC().Format(http.TimeFormat))
	h.Set("Content-Type", contentType)

	start, end := int64(0), int64(len(data))-1
	status := http.StatusOK
	if rng := r.Header.Get("Range"); rng != "" {
		if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil || start > end || end >= int64(len(data)) {
			writeS3Error(w, r, http.StatusRequestedRangeNotSatisfiable, "InvalidRange", "")
			return
		}
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		status = http.StatusPartialContent
	}

	h.Set("Content-Length", fmt.Sprint(end-start+1))
	w.WriteHeader(status)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data[start : end+1])
	}
}

type listResult struct {
	XMLName     xml.Name      `xml:"ListBucketResult"`
	Name        string        `xml:"Name"`
	Prefix      string        `xml:"Prefix"`
	KeyCount    int           `xml:"KeyCount"`
	MaxKeys     int           `xml:"MaxKeys"`
	IsTruncated bool          `xml:"IsTruncated"`
	Contents    []listContent `xml:"Contents"`
}

type listContent struct {
	Key          string `xml:"Key"`
	Size         int    `xml:"Size"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	res := listResult{Name: f.bucket, Prefix: prefix, KeyCount: len(keys), MaxKeys: 1000}
	for _, k := range keys {
		res.Contents = append(res.Contents, listContent{
			Key:          k,
			Size:         len(f.objects[k]),
			LastModified: "1970-01-01T00:00:00.000Z",
			ETag:         `"fake"`,
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_ = xml.NewEncoder(w).Encode(res)
}

type s3Error struct {
	XMLName    xml.Name `xml:"Error"`
	Code       string   `xml:"Code"`
	Message    string   `xml:"Message"`
	Key        string   `xml:"Key,omitempty"`
	BucketName string   `xml:"BucketName,omitempty"`
	RequestID  string   `xml:"RequestId"`
}

func writeS3Error(w http.ResponseWriter, r *http.Request, status int, code, key string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = xml.NewEncoder(w).Encode(s3Error{Code: code, Message: code, Key: key, RequestID: "fake"})
}
