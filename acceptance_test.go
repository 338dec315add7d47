package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issuedCertificate struct {
	CertificateCode   string `json:"certificate_code"`
	VerificationToken string `json:"verification_token"`
	VerificationURL   string `json:"verification_url"`
	Grade             string `json:"grade"`
	Artifacts         struct {
		Certificate struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
		} `json:"certificate"`
	} `json:"artifacts"`
}

// serverPath rewrites an absolute link the API printed onto the test server
func serverPath(t *testing.T, server *httptest.Server, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return server.URL + u.Path
}

// TestCertificateLifecycleAcceptance issues a certificate over HTTP against the
// production router, then follows the links printed on it
func TestCertificateLifecycleAcceptance(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/orders", "application/json",
		strings.NewReader(`{"submitter_name":"Jane Collector","item_title":"Rookie Card #1","grade":"Mint 9"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool              `json:"success"`
		Data    issuedCertificate `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.True(t, created.Success)
	cert := created.Data
	assert.Equal(t, "Mint 9", cert.Grade)
	assert.Contains(t, cert.VerificationURL, "/c/"+cert.CertificateCode+"/"+cert.VerificationToken)

	t.Run("scan verification link", func(t *testing.T) {
		resp, err := http.Get(serverPath(t, server, cert.VerificationURL))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var view struct {
			Data struct {
				CertificateCode string         `json:"certificate_code"`
				Verified        bool           `json:"verified"`
				Population      map[string]int `json:"population"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.Equal(t, cert.CertificateCode, view.Data.CertificateCode)
		assert.True(t, view.Data.Verified)
		assert.Equal(t, 1, view.Data.Population["Mint 9"])
	})

	t.Run("download certificate pdf", func(t *testing.T) {
		require.True(t, cert.Artifacts.Certificate.Available)
		resp, err := http.Get(serverPath(t, server, cert.Artifacts.Certificate.URL))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	})

	t.Run("forged token", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/c/" + cert.CertificateCode + "/0000000000")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("stats count the issued certificate", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/stats")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var stats struct {
			Data struct {
				Total int64 `json:"total"`
				Gem10 int64 `json:"gem10"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
		assert.Equal(t, int64(1), stats.Data.Total)
		assert.Equal(t, int64(0), stats.Data.Gem10)
	})
}
