// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/account"
	"codeberg.org/pinmark/pinmark/core/authenticated"
	"codeberg.org/pinmark/pinmark/core/cookie"
	"codeberg.org/pinmark/pinmark/core/ranking"
	"codeberg.org/pinmark/pinmark/core/session"
	"codeberg.org/pinmark/pinmark/core/store"
	"codeberg.org/pinmark/pinmark/server/api"
	"codeberg.org/pinmark/pinmark/server/assets"
	"codeberg.org/pinmark/pinmark/server/router"
	"codeberg.org/pinmark/pinmark/server/routes"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nnot really a png")

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	config.Global.SetDefaults()
	config.Global.Limiter.Enabled = false
	config.Global.Fetch.AllowPrivateNetworks = true
	config.Global.Fetch.Timeout = 5 * time.Second
	config.Global.Images.PerPage = 2
	config.Global.Instance.FileServerCacheID = "test"

	media, err := os.MkdirTemp("", "pinmark-media")
	if err != nil {
		panic(err)
	}

	config.Global.Media.Root = media

	if err := config.SessionSigner.LoadSecretKeyFromHex(authenticated.NewSecretKeyHex()); err != nil {
		panic(err)
	}

	account.HashCost = bcrypt.MinCost

	assets.FS = fstest.MapFS{
		"assets/css/site.css": {Data: []byte("body { margin: 0 }")},
	}

	code := m.Run()

	_ = os.RemoveAll(media)

	os.Exit(code)
}

type fixture struct {
	srv     *httptest.Server
	images  *httptest.Server
	store   *store.Store
	ranking *ranking.Ranking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "pinmark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mr := miniredis.RunT(t)
	rk := ranking.New(ranking.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rk.Close() })

	r := router.NewRouter()
	r.RegisterMiddleware(st)
	r.DefineRoutes(routes.NewApp(st, rk), api.New(api.NewHandlers(st, rk)))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	t.Cleanup(images.Close)

	return &fixture{srv: srv, images: images, store: st, ranking: rk}
}

// client is a browser: it keeps cookies and does not follow redirects.
type client struct {
	t    *testing.T
	base *url.URL
	http *http.Client
}

func (f *fixture) client(t *testing.T) *client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	base, err := url.Parse(f.srv.URL)
	require.NoError(t, err)

	return &client{
		t:    t,
		base: base,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	*http.Response

	body string
}

func (c *client) do(req *http.Request) response {
	c.t.Helper()

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return response{Response: resp, body: string(body)}
}

func (c *client) get(path string) response {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.base.String()+path, nil)
	require.NoError(c.t, err)

	return c.do(req)
}

func (c *client) csrfToken() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == string(cookie.CSRFCookie) {
			return ck.Value
		}
	}

	return ""
}

// post submits form, adding the CSRF token unless the form has one.
func (c *client) post(path string, form url.Values) response {
	c.t.Helper()

	if c.csrfToken() == "" {
		// any page issues the token
		c.get("/account/login")
	}

	if form == nil {
		form = url.Values{}
	}

	if !form.Has(session.CSRFField) {
		form.Set(session.CSRFField, c.csrfToken())
	}

	req, err := http.NewRequest(http.MethodPost, c.base.String()+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// htmxPost posts like pinmark.js does.
func (c *client) htmxPost(path string) response {
	c.t.Helper()

	return c.htmxForm(path, nil)
}

// htmxForm submits form with the token in the header only, as pinmark.js
// does for data-swap forms.
func (c *client) htmxForm(path string, form url.Values) response {
	c.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(http.MethodPost, c.base.String()+path, body)
	require.NoError(c.t, err)

	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", c.base.String()+"/images/")
	req.Header.Set(session.CSRFHeader, c.csrfToken())

	return c.do(req)
}

func (f *fixture) createUser(t *testing.T, username, password string) store.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := f.store.CreateUser(context.Background(), store.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	})
	require.NoError(t, err)

	return user
}

func (c *client) login(username, password string) {
	c.t.Helper()

	resp := c.post("/account/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode, resp.body)
}

func TestAnonymous(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.client(t)

	tests := []struct {
		path         string
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{path: "/", wantStatus: http.StatusFound, wantLocation: "/account/"},
		{path: "/account", wantStatus: http.StatusPermanentRedirect, wantLocation: "/account/"},
		{path: "/account/", wantStatus: http.StatusFound, wantLocation: "/account/login?next=%2Faccount%2F"},
		{path: "/images/?page=2", wantStatus: http.StatusFound, wantLocation: "/account/login?next=%2Fimages%2F%3Fpage%3D2"},
		{path: "/images/create", wantStatus: http.StatusFound, wantLocation: "/account/login?next=%2Fimages%2Fcreate"},
		{path: "/account/login", wantStatus: http.StatusOK, wantBody: `name="csrf_token"`},
		{path: "/account/register", wantStatus: http.StatusOK, wantBody: `action="/account/register"`},
		{path: "/images/ranking", wantStatus: http.StatusOK, wantBody: "Nothing here yet."},
		{path: "/images/detail/1/missing", wantStatus: http.StatusNotFound, wantBody: "Page not found"},
		{path: "/nowhere", wantStatus: http.StatusNotFound, wantBody: "Page not found"},
		{path: "/css/site.css", wantStatus: http.StatusOK, wantBody: "margin: 0"},
		{path: "/media/images/missing.png", wantStatus: http.StatusNotFound},
		{path: "/api/v1/images", wantStatus: http.StatusUnauthorized, wantBody: api.CodeUnauthenticated},
	}

	for _, tt := range tests {
		resp := c.get(tt.path)

		assert.Equal(t, tt.wantStatus, resp.StatusCode, tt.path)

		if tt.wantLocation != "" {
			assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"), tt.path)
		}

		if tt.wantBody != "" {
			assert.Contains(t, resp.body, tt.wantBody, tt.path)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.client(t)

	resp := c.post("/account/register", url.Values{
		"username":   {"ann"},
		"first_name": {"Ann"},
		"email":      {"ann@example.com"},
		"password":   {"secret"},
		"password2":  {"secret"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Your account has been successfully created.")

	// the same username again re-renders the form
	resp = c.post("/account/register", url.Values{
		"username":  {"ann"},
		"password":  {"x"},
		"password2": {"x"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "A user with that username already exists.")

	resp = c.post("/account/login", url.Values{"username": {"ann"}, "password": {"wrong"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Invalid login")

	resp = c.post("/account/login", url.Values{
		"username": {"ann"},
		"password": {"secret"},
		"next":     {"/images/"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/images/", resp.Header.Get("Location"))

	resp = c.get("/account/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Authenticated successfully")

	// flashes are shown once
	resp = c.get("/account/")
	assert.NotContains(t, resp.body, "Authenticated successfully")

	resp = c.post("/account/edit", url.Values{"first_name": {"Annie"}, "email": {"not an email"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Error updating your profile")

	resp = c.post("/account/edit", url.Values{"first_name": {"Annie"}, "email": {"annie@example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/account/edit", resp.Header.Get("Location"))

	resp = c.get("/account/edit")
	assert.Contains(t, resp.body, "Profile updated successfully")
	assert.Contains(t, resp.body, "annie@example.com")

	resp = c.post("/account/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.get("/account/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLoginDisabledAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.createUser(t, "bob", "secret")
	require.NoError(t, f.store.SetActive(context.Background(), user.ID, false))

	resp := f.client(t).post("/account/login", url.Values{"username": {"bob"}, "password": {"secret"}})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Disabled account")
}

func TestCSRFRequired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.createUser(t, "ann", "secret")

	c := f.client(t)
	resp := c.post("/account/login", url.Values{
		"username":        {"ann"},
		"password":        {"secret"},
		session.CSRFField: {"forged"},
	})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBookmarkFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "ann", "secret")

	c := f.client(t)
	c.login("ann", "secret")

	// the bookmarklet opens the form pre-filled
	resp := c.get("/images/create?title=Cat&url=" + url.QueryEscape(f.images.URL+"/cat.png"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, `value="Cat"`)

	resp = c.post("/images/create", url.Values{"title": {"Cat"}, "url": {f.images.URL + "/cat.gif"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "The given URL does not match valid image extensions.")

	resp = c.post("/images/create", url.Values{
		"title":       {"Cat"},
		"url":         {f.images.URL + "/cat.png"},
		"description": {"a cat"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	detail := resp.Header.Get("Location")
	assert.Equal(t, "/images/detail/1/cat", detail)

	resp = c.get(detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Image added successfully")
	assert.Contains(t, resp.body, "1 view")

	resp = c.get(detail)
	assert.Contains(t, resp.body, "2 views")

	resp = c.get("/images/detail/1/dog")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	img, err := f.store.ImageByID(ctx, 1)
	require.NoError(t, err)

	resp = c.get(config.Global.MediaURL(img.File))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(pngBytes), resp.body)

	// like, then unlike through the partial
	resp = c.htmxPost("/images/like/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "1 like")
	assert.Contains(t, resp.body, "Unlike")

	resp = c.htmxPost("/images/like/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "0 likes")

	resp = c.htmxPost("/images/like/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// plain form posts go back to the image
	resp = c.post("/images/like/1", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	resp = c.get("/images/ranking")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, `href="/images/detail/1/cat"`)

	resp = c.get("/api/v1/images/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), gjson.Get(resp.body, "views").Int())
	assert.Equal(t, int64(1), gjson.Get(resp.body, "total_likes").Int())

	resp = c.get("/api/v1/images")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cat", gjson.Get(resp.body, "images.0.title").String())
}

func TestHeaderTokenForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.createUser(t, "ann", "secret")

	c := f.client(t)
	c.login("ann", "secret")

	resp := c.htmxForm("/images/create", url.Values{
		"title": {"Cat"},
		"url":   {f.images.URL + "/cat.png"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, resp.body)
	assert.Equal(t, "/images/detail/1/cat", resp.Header.Get("Location"))
	assert.NotContains(t, resp.body, "This field is required.")

	img, err := f.store.ImageByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Cat", img.Title)

	// a wrong header is still rejected even with the body parsed
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/images/create",
		strings.NewReader(url.Values{"title": {"Dog"}, "url": {f.images.URL + "/dog.png"}}.Encode()))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(session.CSRFHeader, "forged")

	assert.Equal(t, http.StatusForbidden, c.do(req).StatusCode)
}

func TestImageDiscover(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.createUser(t, "ann", "secret")

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gallery" {
			http.Error(w, "gone", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><head><title>Gallery</title></head>
<body><img src="/cat.png" alt="Cat"><img src="/dog.gif"></body></html>`)
	}))
	t.Cleanup(pages.Close)

	target := "/images/discover?url=" + url.QueryEscape(pages.URL+"/gallery")

	c := f.client(t)

	resp := c.get(target)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/account/login?next="))

	c.login("ann", "secret")

	resp = c.get(target)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Images on Gallery")
	assert.Contains(t, resp.body, `src="`+pages.URL+`/cat.png"`)
	assert.Contains(t, resp.body, `href="/images/create?`)
	assert.NotContains(t, resp.body, "dog.gif")

	resp = c.get("/images/discover?url=" + url.QueryEscape(pages.URL+"/broken"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, "Could not fetch the page.")
	assert.NotContains(t, resp.body, "Images on")

	resp = c.get("/images/discover")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.body, `name="url"`)
}

func TestImageListPaging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	user := f.createUser(t, "ann", "secret")

	for _, title := range []string{"one", "two", "three"} {
		_, err := f.store.CreateImage(ctx, store.Image{UserID: user.ID, Title: title, URL: "https://example.com/" + title + ".png"})
		require.NoError(t, err)
	}

	c := f.client(t)
	c.login("ann", "secret")

	tests := []struct {
		name        string
		query       string
		wantTitles  []string
		wantMissing []string
		wantEmpty   bool
	}{
		{name: "first page", query: "", wantTitles: []string{"three", "two"}, wantMissing: []string{">one<"}},
		{name: "not an integer", query: "?page=x", wantTitles: []string{"three", "two"}},
		{name: "past the end", query: "?page=9", wantTitles: []string{"one"}, wantMissing: []string{">three<"}},
		{name: "fragment", query: "?images_only=1&page=2", wantTitles: []string{"one"}, wantMissing: []string{"<html"}},
		{name: "fragment past the end", query: "?images_only=1&page=3", wantEmpty: true},
	}

	for _, tt := range tests {
		resp := c.get("/images/" + tt.query)
		require.Equal(t, http.StatusOK, resp.StatusCode, tt.name)

		if tt.wantEmpty {
			assert.Empty(t, resp.body, tt.name)

			continue
		}

		for _, title := range tt.wantTitles {
			assert.Contains(t, resp.body, ">"+title+"<", tt.name)
		}

		for _, s := range tt.wantMissing {
			assert.NotContains(t, resp.body, s, tt.name)
		}
	}
}

func TestHtmxLoginRequired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.client(t)

	c.get("/account/login")

	resp := c.htmxPost("/images/like/1")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/account/login?next=%2Fimages%2F", resp.Header.Get("HX-Redirect"))
}
