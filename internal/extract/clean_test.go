package extract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/internal/extract"
)

func TestClean_StripsChromeTags(t *testing.T) {
	raw := []byte(`<html><body><nav>menu</nav><script>alert(1)</script><h1>Body Title</h1><footer>bye</footer></body></html>`)

	cleaned, doc, err := extract.Clean(raw)
	require.NoError(t, err)
	require.NotContains(t, cleaned, "menu")
	require.NotContains(t, cleaned, "alert(1)")
	require.NotContains(t, cleaned, "bye")
	require.Equal(t, "Body Title", doc.Find("h1").Text())
}
