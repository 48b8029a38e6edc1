package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.5 ", "::1", "garbage", ""})

	assert.False(t, m.IsEmpty())
	assert.True(t, m.Allow("10.1.2.3"))
	assert.True(t, m.Allow("192.168.1.5"))
	assert.True(t, m.Allow("::ffff:10.0.0.1"))
	assert.True(t, m.Allow("::1"))
	assert.False(t, m.Allow("192.168.1.6"))
	assert.False(t, m.Allow("not-an-ip"))

	assert.True(t, NewIPMatcher(nil).IsEmpty())
	assert.True(t, NewIPMatcher([]string{"nope"}).IsEmpty())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "127.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "127.0.0.1", ClientIP(r, false))
	assert.Equal(t, "203.0.113.7", ClientIP(r, true))

	r.Header.Set("CF-Connecting-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(r, true))
}

func TestParseHostNoPort(t *testing.T) {
	assert.Equal(t, "example.com", ParseHostNoPort("example.com:8080"))
	assert.Equal(t, "::1", ParseHostNoPort("[::1]:80"))
	assert.Equal(t, "::1", ParseHostNoPort("[::1]"))
	assert.Equal(t, "10.0.0.1", ParseHostNoPort("10.0.0.1"))
	assert.Equal(t, "", ParseHostNoPort(""))
}
