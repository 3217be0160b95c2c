package test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func PerformRequest(
	r *gin.Engine,
	t *testing.T,
	method string,
	url string,
	body io.Reader,
	headers []string,
	withCookie bool,
	cookieName string,
	cookieValue string,
) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	for _, header := range headers {
		if name, value, ok := strings.Cut(header, ": "); ok {
			req.Header.Set(name, value)
		}
	}

	if withCookie {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}

	r.ServeHTTP(w, req)
	return w
}
