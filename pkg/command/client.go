/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package command

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
	"jinr.ru/greenlab/go-cpap/pkg/sink"
	"jinr.ru/greenlab/go-cpap/pkg/srv"
	"jinr.ru/greenlab/go-cpap/pkg/store"
	"jinr.ru/greenlab/go-cpap/pkg/stream"
)

// Client is what the remote variants of the commands need from a server.
type Client interface {
	Extract(path, set string, decodeBody, index bool) (*sink.Document, error)
	ListSchemas() ([]*schema.Set, error)
	ListSessions() ([]*store.Session, error)
	FindSessions(sessionID int64) ([]*store.Session, error)
}

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

var _ Client = &ApiClient{}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d%s", cfg.Api.Address, cfg.Api.Port, srv.ApiPrefix),
	}
}

func checkStatus(r *req.Resp) error {
	if r.Response().StatusCode != http.StatusOK {
		return ErrApiStatus{Status: r.Response().Status, Body: r.String()}
	}
	return nil
}

// Extract uploads a file and returns the server side extraction
func (c *ApiClient) Extract(path, set string, decodeBody, index bool) (*sink.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, stream.ErrSourceNotFound{Path: path}
		}
		return nil, err
	}
	param := req.QueryParam{
		"decodeBody": strconv.FormatBool(decodeBody),
		"index":      strconv.FormatBool(index),
	}
	if set != "" {
		param["schema"] = set
	}
	header := req.Header{
		"Content-Type":   "application/octet-stream",
		srv.SourceHeader: filepath.Base(path),
	}
	r, err := req.Post(c.ApiPrefix+"/extract", header, param, data)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	doc := &sink.Document{}
	if err := r.ToJSON(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListSchemas returns the schema sets the server knows
func (c *ApiClient) ListSchemas() ([]*schema.Set, error) {
	r, err := req.Get(c.ApiPrefix + "/schemas")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var sets []*schema.Set
	if err := r.ToJSON(&sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// ListSessions returns the session index of the server
func (c *ApiClient) ListSessions() ([]*store.Session, error) {
	r, err := req.Get(c.ApiPrefix + "/sessions")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var sessions []*store.Session
	if err := r.ToJSON(&sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *ApiClient) FindSessions(sessionID int64) ([]*store.Session, error) {
	r, err := req.Get(fmt.Sprintf("%s/sessions/%d", c.ApiPrefix, sessionID))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var sessions []*store.Session
	if err := r.ToJSON(&sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
