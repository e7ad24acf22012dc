package taxsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTextDecodesLatin1(t *testing.T) {
	// "Dedução mensal por dependente: R$ 189,59" in ISO-8859-1 bytes.
	latin1 := []byte("Dedu\xe7\xe3o mensal por dependente: R$ 189,59")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		w.Write(latin1)
	}))
	t.Cleanup(srv.Close)

	text, err := NewFetcher(0).GetText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Dedução mensal por dependente")

	dep, ok := findDependentDeduction(text)
	require.True(t, ok)
	assert.Equal(t, "189.59", dep.String())
}

func TestGetTextRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewFetcher(0).GetText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
