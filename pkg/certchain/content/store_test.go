package content_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

type ContentStoreTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestContentStore(t *testing.T) {
	suite.Run(t, new(ContentStoreTestSuite))
}

func (s *ContentStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *ContentStoreTestSuite) TestComputeCID() {
	id1, err := content.ComputeCID([]byte("hello"))
	s.Require().NoError(err)
	id2, err := content.ComputeCID([]byte("hello"))
	s.Require().NoError(err)
	id3, err := content.ComputeCID([]byte("hello!"))
	s.Require().NoError(err)

	s.Equal(id1, id2)
	s.NotEqual(id1, id3)
	s.True(strings.HasPrefix(id1, "bafk"), id1)

	normalized, err := content.NormalizeCID(id1)
	s.Require().NoError(err)
	s.Equal(id1, normalized)

	_, err = content.NormalizeCID("not-a-cid")
	s.ErrorIs(err, model.ErrInvalidParameter)
}

func (s *ContentStoreTestSuite) TestMemoryStore() {
	store := content.NewMemoryStore()
	id, err := store.Put(s.ctx, "cert.json", []byte(`{"name":"x"}`))
	s.Require().NoError(err)

	data, err := store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(`{"name":"x"}`, string(data))

	missing, _ := content.ComputeCID([]byte("never pinned"))
	_, err = store.Get(s.ctx, missing)
	s.ErrorIs(err, model.ErrContentUnavailable)
}

func (s *ContentStoreTestSuite) TestGatewayStore() {
	doc := []byte(`{"name":"Course Certificate"}`)
	docID, err := content.ComputeCID(doc)
	s.Require().NoError(err)

	mux := http.NewServeMux()
	mux.HandleFunc("/pinning/pinFileToIPFS", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer jwt-token", r.Header.Get("Authorization"))
		file, _, err := r.FormFile("file")
		if !s.NoError(err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		raw, _ := io.ReadAll(file)
		id, _ := content.ComputeCID(raw)
		_ = json.NewEncoder(w).Encode(map[string]any{"IpfsHash": id, "PinSize": len(raw), "Timestamp": "2024-01-01T00:00:00Z"})
	})
	mux.HandleFunc("/ipfs/", func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/ipfs/") != docID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(doc)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := content.NewGatewayStore(content.GatewayConfig{
		PinURL:     server.URL,
		GatewayURL: server.URL + "/",
		JWT:        "jwt-token",
		RateLimit:  100,
	})

	id, err := store.Put(s.ctx, "cert.json", doc)
	s.Require().NoError(err)
	s.Equal(docID, id)

	data, err := store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(doc, data)

	other, _ := content.ComputeCID([]byte("other"))
	_, err = store.Get(s.ctx, other)
	s.ErrorIs(err, model.ErrContentUnavailable)
}

func (s *ContentStoreTestSuite) TestGatewayStoreUnreachable() {
	store := content.NewGatewayStore(content.GatewayConfig{GatewayURL: "http://127.0.0.1:1", RateLimit: 100})
	id, _ := content.ComputeCID([]byte("x"))
	_, err := store.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrContentUnavailable)
}
