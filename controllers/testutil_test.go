package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deifrati/api/middleware"
	"github.com/deifrati/api/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

// expectWrite registers the implicit transaction GORM wraps around a single write.
func expectWrite(mock sqlmock.Sqlmock, pattern string, result driverResult) {
	mock.ExpectBegin()
	mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(result.id, result.rows))
	mock.ExpectCommit()
}

type driverResult struct {
	id   int64
	rows int64
}

// asUser stands in for AuthRequired in handler tests.
func asUser(id uint, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, id)
		c.Set(middleware.ContextEmailKey, email)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, _ := json.Marshal(b)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fakeStore is an in-memory storage.Storage.
type fakeStore struct {
	driver    storage.Driver
	keys      *storage.KeyBuilder
	urlBase   string
	puts      map[string][]byte
	types     map[string]string
	putErr    error
	deleted   []string
	deleteOK  bool
	deleteErr error
	folders   []string
}

func newFakeStore(driver storage.Driver, urlBase string) *fakeStore {
	kb := storage.NewKeyBuilder("media")
	kb.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	kb.Rand = func() int64 { return 42 }
	return &fakeStore{
		driver:   driver,
		keys:     kb,
		urlBase:  urlBase,
		puts:     map[string][]byte{},
		types:    map[string]string{},
		deleteOK: true,
	}
}

func (f *fakeStore) Driver() storage.Driver { return f.driver }

func (f *fakeStore) ObjectKey(folder, originalName, desiredBaseName string) string {
	return f.keys.Build(folder, originalName, desiredBaseName)
}

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.puts[key] = b
	f.types[key] = contentType
	return f.PublicURL(key), nil
}

func (f *fakeStore) Delete(_ context.Context, urlOrKey string) (bool, error) {
	f.deleted = append(f.deleted, urlOrKey)
	return f.deleteOK, f.deleteErr
}

func (f *fakeStore) PublicURL(key string) string { return f.urlBase + key }

func (f *fakeStore) EnsureFolder(_ context.Context, folder string) storage.FolderResult {
	f.folders = append(f.folders, folder)
	return storage.FolderResult{Status: storage.FolderCreated, Key: "media/" + folder + "/"}
}

type formPart struct {
	name        string
	value       string
	filename    string
	contentType string
	data        []byte
}

func textField(name, value string) formPart { return formPart{name: name, value: value} }

func fileField(filename, contentType string, data []byte) formPart {
	return formPart{name: "image", filename: filename, contentType: contentType, data: data}
}

// multipartBody writes parts in the given order.
func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.name, p.value))
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.name+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}
