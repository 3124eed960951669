package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumblifyapp/thumblify-server/internal/api/dto"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
	"github.com/thumblifyapp/thumblify-server/internal/search"
)

func generateRequest() map[string]any {
	return map[string]any{
		"title":        "10 sleep tips",
		"style":        "minimalist",
		"aspect_ratio": "1:1",
		"color_scheme": "pastel",
	}
}

func (ts *testServer) generate(t *testing.T, token string, body map[string]any) dto.ThumbnailResponse {
	t.Helper()

	resp := ts.api.Post("/api/thumbnail/generate", bearer(token), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.ThumbnailResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestGenerateThumbnail_Success(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	thumb := ts.generate(t, token, generateRequest())

	assert.Equal(t, "10 sleep tips", thumb.Title)
	assert.Equal(t, "1:1", thumb.AspectRatio)
	assert.Equal(t, "minimalist", thumb.Style)
	assert.Equal(t, "completed", thumb.Status)
	assert.False(t, thumb.IsGenerating)
	assert.NotEmpty(t, thumb.ImageURL)
	assert.NotEmpty(t, thumb.BlurHash)
	assert.Equal(t, 640, thumb.Width)
	assert.Equal(t, 360, thumb.Height)
	assert.NotNil(t, thumb.CompletedAt)
	assert.Equal(t, 1, ts.gen.calls)
}

func TestGenerateThumbnail_CookieAuth(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	resp := ts.api.Post("/api/thumbnail/generate", sessionCookieHeader(token), generateRequest())
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestGenerateThumbnail_NoAuth(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	resp := ts.api.Post("/api/thumbnail/generate", generateRequest())
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, 0, ts.gen.calls)
}

func TestGenerateThumbnail_UnknownStyle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	body := generateRequest()
	body["style"] = "vaporwave"

	resp := ts.api.Post("/api/thumbnail/generate", bearer(token), body)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, 0, ts.gen.calls, "invalid requests never reach the provider")

	// No record was created either
	listResp := ts.api.Get("/api/user/thumbnails", bearer(token))
	var listEnvelope testEnvelope[dto.ListThumbnailsResponse]
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &listEnvelope))
	assert.Zero(t, listEnvelope.Data.Count)
}

func TestGenerateThumbnail_MissingTitle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	body := generateRequest()
	delete(body, "title")

	resp := ts.api.Post("/api/thumbnail/generate", bearer(token), body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestGenerateThumbnail_ProviderFailure(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	ts.gen.err = provider.ErrBlocked

	resp := ts.api.Post("/api/thumbnail/generate", bearer(token), generateRequest())
	require.Equal(t, http.StatusBadGateway, resp.Code, resp.Body.String())

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "PROVIDER", envelope.Code)

	// The record is pollable and terminal
	listResp := ts.api.Get("/api/user/thumbnails", bearer(token))
	var listEnvelope testEnvelope[dto.ListThumbnailsResponse]
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &listEnvelope))
	require.Equal(t, 1, listEnvelope.Data.Count)

	failed := listEnvelope.Data.Thumbnails[0]
	assert.Equal(t, "failed", failed.Status)
	assert.False(t, failed.IsGenerating)
	assert.NotEmpty(t, failed.ErrorMessage)
}

func TestGetThumbnail_OwnerScoped(t *testing.T) {
	ts := setupTestServer(t)
	rootToken, _ := ts.setupRootUser(t)
	memberToken, _ := ts.registerUser(t, "member@example.com")

	thumb := ts.generate(t, rootToken, generateRequest())

	resp := ts.api.Get("/api/user/thumbnail/"+thumb.ID, bearer(rootToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[dto.ThumbnailResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, thumb.ID, envelope.Data.ID)

	// Another owner's record is indistinguishable from absent
	foreignResp := ts.api.Get("/api/user/thumbnail/"+thumb.ID, bearer(memberToken))
	assert.Equal(t, http.StatusNotFound, foreignResp.Code)
}

func TestGetThumbnail_UnknownID(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	resp := ts.api.Get("/api/user/thumbnail/thumb_missing", bearer(token))
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestListThumbnails_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	first := ts.generate(t, token, map[string]any{
		"title": "First Video", "style": "bold", "aspect_ratio": "16:9",
	})
	second := ts.generate(t, token, map[string]any{
		"title": "Second Video", "style": "retro", "aspect_ratio": "16:9",
	})

	resp := ts.api.Get("/api/user/thumbnails", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[dto.ListThumbnailsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, 2, envelope.Data.Count)

	ids := []string{envelope.Data.Thumbnails[0].ID, envelope.Data.Thumbnails[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestDeleteThumbnail_Idempotent(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	thumb := ts.generate(t, token, generateRequest())

	resp := ts.api.Delete("/api/thumbnail/delete/"+thumb.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotEmpty(t, ts.host.deleted, "stored objects are removed")
	assert.Contains(t, ts.searcher.removed, thumb.ID)

	// Repeating the delete is indistinguishable from the first call
	resp = ts.api.Delete("/api/thumbnail/delete/"+thumb.ID, bearer(token))
	assert.Equal(t, http.StatusOK, resp.Code)

	// So is deleting an id that never existed
	resp = ts.api.Delete("/api/thumbnail/delete/thumb_missing", bearer(token))
	assert.Equal(t, http.StatusOK, resp.Code)

	getResp := ts.api.Get("/api/user/thumbnail/"+thumb.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, getResp.Code)
}

func TestDeleteThumbnail_ForeignOwnerKeepsRecord(t *testing.T) {
	ts := setupTestServer(t)
	rootToken, _ := ts.setupRootUser(t)
	memberToken, _ := ts.registerUser(t, "member@example.com")

	thumb := ts.generate(t, rootToken, generateRequest())

	resp := ts.api.Delete("/api/thumbnail/delete/"+thumb.ID, bearer(memberToken))
	assert.Equal(t, http.StatusOK, resp.Code, "foreign delete is a no-op, not an error")

	getResp := ts.api.Get("/api/user/thumbnail/"+thumb.ID, bearer(rootToken))
	assert.Equal(t, http.StatusOK, getResp.Code, "the owner still has the record")
}

func TestSearchThumbnails_HydratesHits(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	thumb := ts.generate(t, token, generateRequest())
	ts.searcher.hits = []search.Hit{
		{ID: thumb.ID, Score: 2.5},
		{ID: "thumb_deleted", Score: 0.3}, // stale hit, dropped on hydration
	}

	resp := ts.api.Get("/api/user/thumbnails/search?q=sleep", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.ListThumbnailsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, 1, envelope.Data.Count)
	assert.Equal(t, thumb.ID, envelope.Data.Thumbnails[0].ID)
}

func TestDownloadThumbnail_AttachmentTransform(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	thumb := ts.generate(t, token, generateRequest())

	resp := ts.api.Get("/api/user/thumbnail/"+thumb.ID+"/download", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[dto.DownloadResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	url := envelope.Data.DownloadURL
	assert.Equal(t, 1, strings.Count(url, "/upload/fl_attachment/"))
	assert.Equal(t, strings.Replace(thumb.ImageURL, "/upload/", "/upload/fl_attachment/", 1), url)
}

func TestDownloadThumbnail_FailedRecordRejected(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	ts.gen.err = errors.New("provider exploded")
	genResp := ts.api.Post("/api/thumbnail/generate", bearer(token), generateRequest())
	require.Equal(t, http.StatusBadGateway, genResp.Code)

	listResp := ts.api.Get("/api/user/thumbnails", bearer(token))
	var listEnvelope testEnvelope[dto.ListThumbnailsResponse]
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &listEnvelope))
	require.Equal(t, 1, listEnvelope.Data.Count)
	failedID := listEnvelope.Data.Thumbnails[0].ID

	resp := ts.api.Get("/api/user/thumbnail/"+failedID+"/download", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code, "failed records have no image to download")
}
