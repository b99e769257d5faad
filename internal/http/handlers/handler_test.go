package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("user_id", int64(42))
	id, ok := getUserID(c)
	if !ok || id != 42 {
		t.Fatalf("getUserID = (%d, %v); want (42, true)", id, ok)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := getUserID(c); ok {
		t.Fatalf("expected failure when no user id is set")
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("user_id", "not-a-number")
	if _, ok := getUserID(c); ok {
		t.Fatalf("expected failure for a non-numeric user id")
	}
}

func TestRound3(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.23456, 1.235},
		{1.7, 1.7},
		{0.0004, 0},
	}
	for _, tc := range cases {
		if got := round3(tc.in); got != tc.want {
			t.Fatalf("round3(%v) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
