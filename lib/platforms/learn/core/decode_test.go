package core

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDeclaresUtf8(t *testing.T) {
	cases := []struct {
		contentType string
		expected    bool
	}{
		{"text/html; charset=utf-8", true},
		{"text/html; charset=\"UTF-8\"", true},
		{"text/html;charset=Utf-8", true},
		{"text/html; charset=gb2312", false},
		{"text/html", false},
		{"", false},
		// unparsable, falls back to searching the raw header
		{"text/html; charset=utf-8; =broken", true},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, declaresUtf8(test.contentType), test.contentType)
	}
}

func TestDecompressPassThrough(t *testing.T) {
	plain := []byte("already inflated")

	out, err := decompress("gzip", plain)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, plain, out)

	out, err = decompress("", plain)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, plain, out)
}

func TestDecodeText(t *testing.T) {
	text, err := decodeText("text/html", []byte{0xbf, 0xce, 0xb3, 0xcc}, simplifiedchinese.GBK)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "课程", text)
}
