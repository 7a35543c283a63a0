package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omegavideos/internal/model"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.raw)

			got, err := idParam(r, "id")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "clip"))
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/videos", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestFormMedia(t *testing.T) {
	r := multipartRequest(t, "video", "../../clip.mp4", []byte("bytes"))
	require.NoError(t, parseMultipart(httptest.NewRecorder(), r, 1024))

	media, file, err := formMedia(r, "video")
	require.NoError(t, err)
	require.NotNil(t, file)
	defer file.Close()

	assert.Equal(t, "clip.mp4", media.Filename)
	assert.Equal(t, int64(5), media.Size)
	body, err := io.ReadAll(media.Body)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(body))
	assert.Equal(t, "clip", r.FormValue("title"))
}

func TestFormMedia_Missing(t *testing.T) {
	r := multipartRequest(t, "", "", nil)
	require.NoError(t, parseMultipart(httptest.NewRecorder(), r, 1024))

	media, file, err := formMedia(r, "video")

	require.NoError(t, err)
	assert.Nil(t, media)
	assert.Nil(t, file)
}

func TestParseMultipart_TooLarge(t *testing.T) {
	r := multipartRequest(t, "video", "big.mp4", bytes.Repeat([]byte("x"), 2*multipartOverhead+10))

	err := parseMultipart(httptest.NewRecorder(), r, 16)

	assert.ErrorIs(t, err, model.ErrFileTooLarge)
}
