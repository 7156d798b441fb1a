package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosotuv/internal/domain"
)

func TestLimitClamp(t *testing.T) {
	assert.Equal(t, MaxLimit, LimitParam("1000"))
	assert.Equal(t, DefaultLimit, LimitParam(""))
	assert.Equal(t, DefaultLimit, LimitParam("-3"))
	assert.Equal(t, 7, LimitParam("7"))
}

func TestPageAndSort(t *testing.T) {
	assert.Equal(t, 1, Page("0"))
	assert.Equal(t, 1, Page("x"))
	assert.Equal(t, 4, Page("4"))
	assert.Equal(t, MaxPage, Page("461168601842738792"))
	assert.Equal(t, domain.SortCheapest, Sort("cheapest"))
	assert.Equal(t, domain.SortExpensive, Sort("expensive"))
	assert.Equal(t, domain.SortNewest, Sort("random"))
}

func TestID(t *testing.T) {
	id, ok := ID(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
	for _, bad := range []string{"", "0", "-1", "abc", "1e3"} {
		_, ok := ID(bad)
		assert.False(t, ok, bad)
	}
}

func TestImageURLs(t *testing.T) {
	out, ok := ImageURLs([]string{" /uploads/1.jpg ", "https://cdn.example.com/a/b.png"}, 5)
	require.True(t, ok)
	assert.Equal(t, []string{"/uploads/1.jpg", "https://cdn.example.com/a/b.png"}, out)

	_, ok = ImageURLs(nil, 5)
	assert.False(t, ok)
	_, ok = ImageURLs([]string{"/uploads/../etc/passwd"}, 5)
	assert.False(t, ok)
	_, ok = ImageURLs([]string{"javascript:alert(1)"}, 5)
	assert.False(t, ok)
	_, ok = ImageURLs([]string{"//evil.example.com/x.jpg"}, 5)
	assert.False(t, ok)
	_, ok = ImageURLs([]string{"/u/1.jpg"}, 5)
	assert.True(t, ok)
	_, ok = ImageURLs([]string{"/uploads/a.jpg", "/uploads/b.jpg"}, 1)
	assert.False(t, ok)
}

func TestFlexInt(t *testing.T) {
	var v struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
		C FlexInt `json:"c"`
		D FlexInt `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":2022,"b":"150000","c":"","d":"abc"}`), &v))
	assert.Equal(t, FlexInt{Value: 2022, Set: true}, v.A)
	assert.Equal(t, FlexInt{Value: 150000, Set: true}, v.B)
	assert.False(t, v.C.Set)
	assert.False(t, v.D.Set)
}
