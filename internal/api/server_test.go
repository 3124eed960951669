package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json/v2"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/thumblifyapp/thumblify-server/internal/api/dto"
	"github.com/thumblifyapp/thumblify-server/internal/auth"
	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/media"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
	"github.com/thumblifyapp/thumblify-server/internal/search"
	"github.com/thumblifyapp/thumblify-server/internal/service"
	"github.com/thumblifyapp/thumblify-server/internal/store"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

// testEnvelope mirrors the response envelope for assertions.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// === Fakes ===

type fakeGenerator struct {
	img   *provider.Image
	err   error
	calls int
}

func (f *fakeGenerator) GenerateImage(_ context.Context, _ provider.GenerateRequest) (*provider.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

type fakeHost struct {
	uploads map[string][]byte
	deleted []string
}

func (f *fakeHost) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.uploads[key] = data
	return "http://media.test/upload/v1/" + key, nil
}

func (f *fakeHost) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.uploads, key)
	return nil
}

func (f *fakeHost) DownloadURL(_ context.Context, storedURL, key, filename string) (string, error) {
	if u, ok := media.AttachmentURL(storedURL); ok {
		return u, nil
	}
	return "http://media.test/presigned/" + key + "?filename=" + filename, nil
}

type fakeSearcher struct {
	hits    []search.Hit
	removed []string
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ string, _ int) ([]search.Hit, error) {
	return f.hits, nil
}

func (f *fakeSearcher) RemoveThumbnail(_ context.Context, thumbID string) error {
	f.removed = append(f.removed, thumbID)
	return nil
}

// === Setup ===

type testServer struct {
	*Server
	api          humatest.TestAPI
	gen          *fakeGenerator
	host         *fakeHost
	searcher     *fakeSearcher
	tokenService *auth.TokenService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		720*time.Hour,
	)
	require.NoError(t, err)

	validator := validation.New()
	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, validator, nil, true, logger)

	gen := &fakeGenerator{img: &provider.Image{Data: testPNG(t, 640, 360), MimeType: "image/png"}}
	host := &fakeHost{uploads: make(map[string][]byte)}
	searcher := &fakeSearcher{}

	services := &Services{
		Auth:      authService,
		Session:   sessionService,
		Thumbnail: service.NewThumbnailService(st, gen, host, searcher, nil, validator, "thumbnails", logger),
		Admin:     service.NewAdminService(st, logger),
		Import:    service.NewImportService(st, logger),
	}

	cfg := &config.Config{
		App: config.AppConfig{Environment: "development"},
		Server: config.ServerConfig{
			Name:        "Thumblify Test",
			CORSOrigins: []string{"*"},
		},
		Provider: config.ProviderConfig{APIKey: "test-key"},
	}

	s := NewServer(cfg, st, services, host, logger)

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		gen:          gen,
		host:         host,
		searcher:     searcher,
		tokenService: tokenService,
	}
}

// setupRootUser runs initial setup and returns the root's token and id.
func (ts *testServer) setupRootUser(t *testing.T) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/auth/setup", map[string]any{
		"email":        "root@example.com",
		"password":     "correct horse battery staple",
		"display_name": "Root",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Setup failed: %s", resp.Body.String())

	return ts.decodeAuth(t, resp.Body.Bytes())
}

// registerUser creates an additional account via open registration.
func (ts *testServer) registerUser(t *testing.T, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/auth/register", map[string]any{
		"email":        email,
		"password":     "correct horse battery staple",
		"display_name": "Member",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	return ts.decodeAuth(t, resp.Body.Bytes())
}

func (ts *testServer) decodeAuth(t *testing.T, body []byte) (token, userID string) {
	t.Helper()

	var envelope testEnvelope[dto.AuthResponse]
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.True(t, envelope.Success)

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)

	return envelope.Data.AccessToken, claims.UserID
}

// testPNG renders a solid PNG of the given size.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func sessionCookieHeader(token string) string {
	return "Cookie: " + SessionCookieName + "=" + token
}

// findSessionCookie extracts the session cookie from a recorded response.
func findSessionCookie(t *testing.T, headers http.Header) *http.Cookie {
	t.Helper()

	for _, raw := range headers.Values("Set-Cookie") {
		if strings.HasPrefix(raw, SessionCookieName+"=") {
			parsed, err := http.ParseSetCookie(raw)
			require.NoError(t, err)
			return parsed
		}
	}
	return nil
}
