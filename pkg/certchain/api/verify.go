package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/goccy/go-json"
)

// verify accepts either a JSON body or a multipart form carrying the same
// fields with the document in the "file" part.
func (s *RestServer) verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := decodeVerifyRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyResponse{Error: fmt.Sprintf("Invalid request: %s", err.Error())})
		return
	}

	result, err := s.Verifier.Verify(ctx, req)
	if err != nil {
		writeJSON(w, model.ErrToHttpStatus(err), VerifyResponse{Error: fmt.Sprintf("Failed to verify certificate: %s", err.Error())})
		return
	}
	writeJSON(w, http.StatusOK, newVerifyResponse(result, s.GatewayURL))
}

func decodeVerifyRequest(w http.ResponseWriter, r *http.Request) (verification.Request, error) {
	req := verification.Request{}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadSize)).Decode(&req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		return req, err
	}
	req.Method = model.VerificationMethod(r.FormValue("verificationMethod"))
	req.TokenID = r.FormValue("tokenId")
	req.Hash = r.FormValue("hash")
	req.ContentID = r.FormValue("contentId")
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		if req.File, err = io.ReadAll(file); err != nil {
			return req, err
		}
	}
	if req.Method == "" && req.File != nil {
		req.Method = model.VerifyByFile
	}
	return req, nil
}
