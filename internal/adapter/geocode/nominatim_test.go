package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinates_Success(t *testing.T) {
	t.Parallel()
	var gotQuery, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"18.5204","lon":"73.8567"}]`))
	}))
	defer ts.Close()

	c := New(ts.URL, "resume-ingest-test")
	pt, err := c.Coordinates(context.Background(), "Pune", "Maharashtra", "India")
	require.NoError(t, err)
	require.NotNil(t, pt)
	require.InDelta(t, 18.5204, pt.Latitude, 0.0001)
	require.InDelta(t, 73.8567, pt.Longitude, 0.0001)
	require.Equal(t, "Pune, Maharashtra, India", gotQuery)
	require.Equal(t, "resume-ingest-test", gotUA)
}

func TestCoordinates_SkipsEmptyParts(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "India", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := New(ts.URL, "ua")
	pt, err := c.Coordinates(context.Background(), "", "  ", "India")
	require.NoError(t, err)
	require.Nil(t, pt)
}

func TestCoordinates_AllEmptyNoRequest(t *testing.T) {
	t.Parallel()
	c := New("http://geocoder.invalid", "ua")
	pt, err := c.Coordinates(context.Background(), "", "", "")
	require.NoError(t, err)
	require.Nil(t, pt)
}

func TestCoordinates_ServerError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := New(ts.URL, "ua")
	_, err := c.Coordinates(context.Background(), "Pune", "", "India")
	require.Error(t, err)
}

func TestCoordinates_BadPayload(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "ua")
	_, err := c.Coordinates(context.Background(), "Pune", "", "India")
	require.Error(t, err)
}
