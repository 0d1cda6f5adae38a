package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/encoder"
	"portfolioapi/internal/model"
	"portfolioapi/internal/notify"
	"portfolioapi/internal/service"
	serviceMocks "portfolioapi/internal/service/mocks"
	"portfolioapi/internal/storage"
	"portfolioapi/internal/validator"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, f.name))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
}

func TestHealthCheck(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Get("/health", HealthCheck(mockSvc))

	t.Run("healthy", func(t *testing.T) {
		mockSvc.On("Ping", mock.Anything).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		mockSvc.On("Ping", mock.Anything).Return(storage.ErrStorageUnavailable).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestLivenessProbe(t *testing.T) {
	app := newApp()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetPortfolio(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Get("/portfolio", GetPortfolio(mockSvc))

	rec := model.NewPortfolioRecord()
	rec.Profile = &model.FileRecord{ID: "p1", Name: "me.png", MediaType: "image/png", SizeBytes: 10,
		Content: "data:image/png;base64,AAAA", Category: model.Profile}
	rec.Projects = []model.FileRecord{{ID: "a", Name: "a.png", Category: model.Project}}
	mockSvc.On("Files").Return(rec).Once()
	mockSvc.On("IsUploading").Return(true).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "base64", "data URIs are not inlined in listings")

	var body struct {
		Data        portfolioResponse `json:"data"`
		IsUploading bool              `json:"is_uploading"`
		Stats       model.Stats       `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.IsUploading)
	require.NotNil(t, body.Data.Profile)
	assert.Equal(t, "/portfolio/files/p1", body.Data.Profile.URL)
	assert.Equal(t, model.Profile, body.Data.Profile.Category)
	assert.Nil(t, body.Data.Resume)
	assert.Len(t, body.Data.Projects, 1)
	assert.Equal(t, 2, body.Stats.TotalFiles)
	assert.Equal(t, 67, body.Stats.CompletionPercent)
	mockSvc.AssertExpectations(t)
}

func TestUploadFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Post("/portfolio/:category", UploadFiles(mockSvc, 3))

	post := func(t *testing.T, category string, files ...formFile) *http.Response {
		t.Helper()
		body, ct := multipartBody(t, files...)
		req := httptest.NewRequest(http.MethodPost, "/portfolio/"+category, body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success with sniffed type", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(u service.Upload) bool {
			return u.Name == "me.png" && u.MediaType == "image/png" && u.Size == int64(len(pngHeader))
		}), model.Profile).Return(&model.FileRecord{ID: "p1", Name: "me.png", Category: model.Profile}, nil).Once()

		resp := post(t, "profile", formFile{name: "me.png", data: pngHeader})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result struct {
			Data []fileResponse `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result.Data, 1)
		assert.Equal(t, "p1", result.Data[0].ID)
	})

	t.Run("declared type wins", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(u service.Upload) bool {
			return u.MediaType == "application/pdf"
		}), model.Resume).Return(&model.FileRecord{ID: "r1", Category: model.Resume}, nil).Once()

		resp := post(t, "resume", formFile{name: "cv.pdf", contentType: "Application/PDF", data: []byte("%PDF-1.7")})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("several projects in order", func(t *testing.T) {
		mockSvc.On("Files").Return(model.NewPortfolioRecord()).Once()
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(u service.Upload) bool { return u.Name == "a.png" }), model.Project).
			Return(&model.FileRecord{ID: "a", Category: model.Project}, nil).Once()
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(u service.Upload) bool { return u.Name == "b.png" }), model.Project).
			Return(&model.FileRecord{ID: "b", Category: model.Project}, nil).Once()

		resp := post(t, "project", formFile{name: "a.png", data: pngHeader}, formFile{name: "b.png", data: pngHeader})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result struct {
			Data []fileResponse `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result.Data, 2)
		assert.Equal(t, "a", result.Data[0].ID)
		assert.Equal(t, "b", result.Data[1].ID)
	})

	t.Run("soft cap", func(t *testing.T) {
		rec := model.NewPortfolioRecord()
		rec.Projects = []model.FileRecord{{ID: "1"}, {ID: "2"}, {ID: "3"}}
		mockSvc.On("Files").Return(rec).Once()

		resp := post(t, "project", formFile{name: "d.png", data: pngHeader})

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "TOO_MANY_FILES", decodeError(t, resp).Error.Code)
	})

	t.Run("single file only", func(t *testing.T) {
		resp := post(t, "resume", formFile{name: "a.pdf", data: []byte("a")}, formFile{name: "b.pdf", data: []byte("b")})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "SINGLE_FILE_ONLY", decodeError(t, resp).Error.Code)
	})

	t.Run("no file", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/portfolio/profile", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		resp := post(t, "avatar", formFile{name: "a.png", data: pngHeader})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CATEGORY", decodeError(t, resp).Error.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		vErr := &service.OperationError{
			Op:       service.OpUpload,
			Category: model.Resume,
			FileName: "notes.txt",
			Err: &validator.ValidationError{
				Kind:     validator.ErrInvalidType,
				Category: model.Resume,
				Message:  "Invalid file type for resume. Please upload PDF files only.",
			},
		}
		mockSvc.On("Upload", mock.Anything, mock.Anything, model.Resume).Return(nil, vErr).Once()

		resp := post(t, "resume", formFile{name: "notes.txt", contentType: "text/plain", data: []byte("hi")})

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_TYPE", res.Error.Code)
		assert.Equal(t, "Upload failed", res.Error.Title)
		assert.Equal(t, "Invalid file type for resume. Please upload PDF files only.", res.Error.Message)
	})

	mockSvc.AssertExpectations(t)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"too large", &service.OperationError{Op: service.OpUpload, Err: &validator.ValidationError{Kind: validator.ErrTooLarge, Message: "File too large. Maximum size for profile is 5MB."}}, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
		{"encoding", &service.OperationError{Op: service.OpUpload, Err: fmt.Errorf("%w: short read", encoder.ErrEncodingFailure)}, http.StatusUnprocessableEntity, "ENCODING_FAILURE"},
		{"storage", &service.OperationError{Op: service.OpDelete, Err: storage.ErrStorageUnavailable}, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		{"not found", service.ErrFileNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return writeServiceError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			res := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, res.Error.Code)
			assert.NotContains(t, res.Error.Message, "short read")
		})
	}
}

func TestReplaceFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Put("/portfolio/:category", ReplaceFile(mockSvc))
	app.Put("/portfolio/:category/:id", ReplaceFile(mockSvc))

	put := func(t *testing.T, path string) *http.Response {
		t.Helper()
		body, ct := multipartBody(t, formFile{name: "new.png", data: pngHeader})
		req := httptest.NewRequest(http.MethodPut, path, body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("project in place", func(t *testing.T) {
		mockSvc.On("Replace", mock.Anything, mock.Anything, model.Project, "b").
			Return(&model.FileRecord{ID: "b", Name: "new.png", Category: model.Project}, nil).Once()

		resp := put(t, "/portfolio/project/b")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Replaced bool         `json:"replaced"`
			Data     fileResponse `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body.Replaced)
		assert.Equal(t, "b", body.Data.ID)
	})

	t.Run("unknown project id", func(t *testing.T) {
		mockSvc.On("Replace", mock.Anything, mock.Anything, model.Project, "zzz").Return(nil, nil).Once()

		resp := put(t, "/portfolio/project/zzz")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, false, body["replaced"])
	})

	t.Run("singleton", func(t *testing.T) {
		mockSvc.On("Replace", mock.Anything, mock.Anything, model.Profile, "").
			Return(&model.FileRecord{ID: "p2", Category: model.Profile}, nil).Once()

		resp := put(t, "/portfolio/profile")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestDeleteFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Delete("/portfolio/:category", DeleteFile(mockSvc))
	app.Delete("/portfolio/:category/:id", DeleteFile(mockSvc))

	t.Run("project", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "a", model.Project).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio/project/a", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("singleton with query id", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "x", model.Resume).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio/resume?id=x", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("project without id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio/project", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "ID_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "", model.Profile).
			Return(&service.OperationError{Op: service.OpDelete, Category: model.Profile, Err: storage.ErrStorageUnavailable}).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio/profile", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "STORAGE_UNAVAILABLE", res.Error.Code)
		assert.Equal(t, "Delete failed", res.Error.Title)
	})

	mockSvc.AssertExpectations(t)
}

func TestClearPortfolio(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Delete("/portfolio", ClearPortfolio(mockSvc))

	mockSvc.On("ClearAll", mock.Anything).Return(nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestGetFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Get("/portfolio/files/:id", GetFile(mockSvc))

	rec := &model.FileRecord{ID: "r1", Name: "cv.pdf", MediaType: "application/pdf", Category: model.Resume}

	t.Run("inline", func(t *testing.T) {
		mockSvc.On("Content", mock.Anything, "r1").Return(rec, []byte("%PDF"), nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/portfolio/files/r1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Empty(t, resp.Header.Get("Content-Disposition"))
		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF", string(data))
	})

	t.Run("download", func(t *testing.T) {
		mockSvc.On("Content", mock.Anything, "r1").Return(rec, []byte("%PDF"), nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/portfolio/files/r1?download=1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment; filename="cv.pdf"`)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Content", mock.Anything, "nope").Return(nil, nil, service.ErrFileNotFound).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/portfolio/files/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestPreview(t *testing.T) {
	mockSvc := new(serviceMocks.MockPortfolioService)
	app := newApp()
	app.Get("/preview", PreviewHTML(mockSvc, "Jane"))
	app.Get("/preview.md", PreviewMarkdown(mockSvc, "Jane"))

	rec := model.NewPortfolioRecord()
	rec.Resume = &model.FileRecord{ID: "r1", Name: "cv.pdf", SizeBytes: 1024, Category: model.Resume}
	mockSvc.On("Files").Return(rec).Twice()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/preview", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "<title>Jane</title>")
	assert.Contains(t, string(page), `href="/portfolio/files/r1?download=1"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/preview.md", nil))
	require.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
	doc, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(doc), "# Jane"))

	mockSvc.AssertExpectations(t)
}

func TestListNotifications(t *testing.T) {
	feed := notify.NewFeed(5, nil)
	feed.Notify(t.Context(), notify.Notification{ID: "1", Title: "File deleted", CreatedAt: time.Unix(0, 0)})
	feed.Notify(t.Context(), notify.Notification{ID: "2", Title: "Portfolio cleared", CreatedAt: time.Unix(0, 0)})

	app := newApp()
	app.Get("/notifications", ListNotifications(feed))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notifications?since=1", nil))
	require.NoError(t, err)

	var body struct {
		Data []notify.Notification `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Portfolio cleared", body.Data[0].Title)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "portfolio_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	app := newApp()
	app.Get("/metrics", Metrics(reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "portfolio_test_total 1")
}

func TestRouting(t *testing.T) {
	app := newApp()

	mockSvc := new(serviceMocks.MockPortfolioService)
	RegisterRoutes(app, Deps{Portfolio: mockSvc, ProjectSoftCap: 10})

	t.Run("not found route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("busy guard", func(t *testing.T) {
		mockSvc.On("IsUploading").Return(true).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "BUSY", decodeError(t, resp).Error.Code)
	})

	t.Run("clear when idle", func(t *testing.T) {
		mockSvc.On("IsUploading").Return(false).Once()
		mockSvc.On("ClearAll", mock.Anything).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/portfolio", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}
