package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestTableHasSevenDistinctRoutes(t *testing.T) {
	routes := Table("/")
	require.Len(t, routes, 7)

	wantPaths := []string{"/", "/test", "/balderdash", "/vendors", "/login", "/register", "/manage"}
	pages := map[Page]struct{}{}
	for i, rt := range routes {
		require.Equal(t, wantPaths[i], rt.Path)
		require.NotEmpty(t, rt.Name)
		pages[rt.Page] = struct{}{}
	}
	require.Len(t, pages, 7, "each route resolves to a distinct page")
	require.NoError(t, Validate(routes))
}

func TestTableWithBasePrefix(t *testing.T) {
	routes := Table("app/")
	require.Equal(t, "/app", routes[0].Path)
	require.Equal(t, "/app/test", routes[1].Path)
	require.Equal(t, "/app/manage", routes[6].Path)
	require.NoError(t, Validate(routes))
}

func TestTableReturnsCopy(t *testing.T) {
	routes := Table("/")
	routes[0].Path = "/changed"
	require.Equal(t, "/", Table("/")[0].Path)
}

func TestValidateRejectsCollisions(t *testing.T) {
	err := Validate([]Route{
		{Path: "/a", Name: "a", Page: PageMap},
		{Path: "/a", Name: "b", Page: PageTest},
		{Path: "/c", Name: "", Page: PageAdmin},
		{Path: "d", Name: "a", Page: PageInfo},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `duplicate path "/a"`)
	require.Contains(t, err.Error(), `route "/c" has an empty name`)
	require.Contains(t, err.Error(), `route "d" is not absolute`)
	require.Contains(t, err.Error(), `duplicate name "a"`)
}

func TestLookupAndByName(t *testing.T) {
	routes := Table("/")

	rt, ok := Lookup(routes, "/vendors/")
	require.True(t, ok)
	require.Equal(t, PageInfo, rt.Page)

	rt, ok = Lookup(routes, "")
	require.True(t, ok)
	require.Equal(t, PageMap, rt.Page)

	_, ok = Lookup(routes, "/missing")
	require.False(t, ok)

	rt, ok = ByName(routes, "admin")
	require.True(t, ok)
	require.Equal(t, "/balderdash", rt.Path)
}

func TestMountRegistersEveryPage(t *testing.T) {
	routes := Table("/")
	handlers := map[Page]http.HandlerFunc{}
	for _, rt := range routes {
		page := rt.Page
		handlers[page] = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, string(page))
		}
	}

	r := chi.NewRouter()
	require.NoError(t, Mount(r, routes, handlers))

	for _, rt := range routes {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rt.Path, nil))
		require.Equal(t, http.StatusOK, rec.Code, rt.Path)
		require.Equal(t, string(rt.Page), rec.Body.String())
	}
}

func TestMountFailsOnMissingHandler(t *testing.T) {
	err := Mount(chi.NewRouter(), Table("/"), map[Page]http.HandlerFunc{
		PageMap: func(http.ResponseWriter, *http.Request) {},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `no handler for page "test"`)
}
