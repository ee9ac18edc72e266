package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, profile string) (*Google, func()) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profile))
	})
	srv := httptest.NewServer(mux)

	g := NewGoogle(GoogleConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		HostedDomain: "despacho.mx",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
	})
	return g, srv.Close
}

func TestAuthURL_CarriesStateAndDomain(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "id", ClientSecret: "s", HostedDomain: "Despacho.mx"})
	u, err := url.Parse(g.AuthURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "despacho.mx", u.Query().Get("hd"))
	assert.True(t, g.IsConfigured())
	assert.False(t, NewGoogle(GoogleConfig{}).IsConfigured())
}

func TestAuthenticate(t *testing.T) {
	g, stop := fakeGoogle(t, `{"id":"1","email":" Ana@Despacho.MX ","verified_email":true,"name":"Ana","hd":"despacho.mx"}`)
	defer stop()

	id, err := g.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "ana@despacho.mx", id.Email)
	assert.Equal(t, "Ana", id.Name)

	_, err = g.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestAuthenticate_RejectsUnverifiedAndForeign(t *testing.T) {
	g, stop := fakeGoogle(t, `{"id":"1","email":"ana@despacho.mx","verified_email":false,"hd":"despacho.mx"}`)
	_, err := g.Authenticate(context.Background(), "good")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	stop()

	g, stop = fakeGoogle(t, `{"id":"2","email":"ana@gmail.com","verified_email":true}`)
	defer stop()
	_, err = g.Authenticate(context.Background(), "good")
	assert.ErrorIs(t, err, ErrForeignDomain)
}
