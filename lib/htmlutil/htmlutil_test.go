package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestNormalizeSpace(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"123  Main\n\tSt", "123 Main St"},
		{"  leading and trailing \n", "leading and trailing"},
		{"single", "single"},
		{"", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeSpace(test.input))
	}
}

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		"<div><span>hello</span> <b>world</b></div>",
	))
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "hello world", GetText(doc))
}
