package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantPage: DefaultPage, wantLimit: DefaultLimit},
		{name: "explicit", query: "page=3&limit=50", wantPage: 3, wantLimit: 50},
		{name: "zero page falls back", query: "page=0", wantPage: DefaultPage, wantLimit: DefaultLimit},
		{name: "negative limit falls back", query: "limit=-5", wantPage: DefaultPage, wantLimit: DefaultLimit},
		{name: "limit capped", query: "limit=5000", wantPage: DefaultPage, wantLimit: MaxLimit},
		{name: "garbage falls back", query: "page=abc&limit=xyz", wantPage: DefaultPage, wantLimit: DefaultLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := paramsFor(t, tc.query)
			assert.Equal(t, tc.wantPage, params.Page)
			assert.Equal(t, tc.wantLimit, params.Limit)
		})
	}
}
