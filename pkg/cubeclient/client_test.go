package cubeclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnndsc/cube-client/pkg/cube"
	"github.com/fnndsc/cube-client/pkg/cubeclient"
)

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "adds scheme and slash",
			input: "cube.example.org/api/v1",
			want:  "https://cube.example.org/api/v1/",
		},
		{
			name:  "keeps http scheme",
			input: "http://localhost:8000/api/v1/",
			want:  "http://localhost:8000/api/v1/",
		},
		{
			name:  "trims whitespace",
			input: "  https://cube.example.org/api/v1/  ",
			want:  "https://cube.example.org/api/v1/",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: cube.ErrAddressRequired,
		},
		{
			name:    "not a CUBE URL",
			input:   "https://example.org/",
			wantErr: cube.ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cubeclient.NormalizeAddress(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth-token/", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string

		_ = json.NewDecoder(r.Body).Decode(&creds)

		if creds["username"] != "alice" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors": ["Unable to log in with provided credentials."]}`))

			return
		}

		_ = json.NewEncoder(w).Encode(cube.AuthTokenResponse{Token: "tok-123"})
	})

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(cube.BaseResponse{})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	server := newAuthServer(t)

	token, err := cubeclient.Authenticate(context.Background(), server.URL+"/api/v1/", "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	t.Parallel()

	server := newAuthServer(t)

	_, err := cubeclient.Authenticate(context.Background(), server.URL+"/api/v1/", "alice", "wrong")
	require.Error(t, err)

	cubeErr := &cube.Error{}
	require.ErrorAs(t, err, &cubeErr)
	assert.Equal(t, http.StatusBadRequest, cubeErr.StatusCode)
	assert.Contains(t, cubeErr.Body, "Unable to log in")
}

func TestNew_WithPassword(t *testing.T) {
	t.Parallel()

	server := newAuthServer(t)

	client, err := cubeclient.New(context.Background(), &cube.Config{
		Address:  server.URL + "/api/v1/",
		Username: "alice",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, cube.ReadWrite, client.Access())
	assert.Equal(t, "alice", client.Username())
}

func TestNew_Anonymous(t *testing.T) {
	t.Parallel()

	server := newAuthServer(t)

	client, err := cubeclient.New(context.Background(), &cube.Config{
		Address: server.URL + "/api/v1/",
	})
	require.NoError(t, err)
	assert.Equal(t, cube.ReadOnly, client.Access())
}

func TestNew_NilConfig(t *testing.T) {
	t.Parallel()

	_, err := cubeclient.New(context.Background(), nil)
	require.ErrorIs(t, err, cube.ErrConfigRequired)
}
