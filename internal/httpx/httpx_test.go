package httpx

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{"limit": {"500"}, "offset": {"40"}}, 20, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, limit)
	assert.EqualValues(t, 40, offset)

	limit, offset, err = ParseLimitOffset(url.Values{}, 20, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 20, limit)
	assert.EqualValues(t, 0, offset)

	_, _, err = ParseLimitOffset(url.Values{"limit": {"0"}}, 20, 100)
	assert.EqualError(t, err, "invalid limit")
	_, _, err = ParseLimitOffset(url.Values{"offset": {"-1"}}, 20, 100)
	assert.EqualError(t, err, "invalid offset")
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	assert.Error(t, DecodeJSON(r, &v))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","extra":1}`))
	assert.Error(t, DecodeJSON(r, &v))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "a", v.Name)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", ClientIP(r))

	r.RemoteAddr = "[::1]:5555"
	assert.Equal(t, "::1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}
