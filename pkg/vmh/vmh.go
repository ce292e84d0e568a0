// Package vmh fetches models from the Virtual Metabolic Human project:
// AGORA single-organism models as SBML, and the Recon2 human
// reconstruction as a MATLAB workspace archive.
package vmh

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"metabocore/internal/blob"
	"metabocore/pkg/model"
)

// DefaultBaseURL is the VMH public download endpoint.
const DefaultBaseURL = "https://webdav-r3lab.uni.lu/public/msp/"

// Recon2FileName is the MATLAB file distributed for the current Recon2
// release.
const Recon2FileName = "Recon2.v04.mat"

// StatusError reports a VMH download that returned a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("vmh request %s failed with status %d", e.URL, e.StatusCode)
}

// Config controls a Client. The zero value selects the public endpoint
// and http.DefaultClient.
type Config struct {
	// BaseURL of the download directory, ending in a slash.
	BaseURL string
	// HTTPClient used for downloads.
	HTTPClient *http.Client
}

// Client downloads models from the VMH website.
type Client struct {
	cfg Config
}

// NewClient builds a Client, filling config defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.BaseURL[len(cfg.BaseURL)-1] != '/' {
		cfg.BaseURL += "/"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{cfg: cfg}
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	url := c.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// AgoraModel downloads an AGORA organism model and decodes its SBML
// representation.
func (c *Client) AgoraModel(ctx context.Context, name string) (*model.Model, error) {
	body, err := c.fetch(ctx, "AGORA/sbml/"+name+".xml")
	if err != nil {
		return nil, err
	}
	return model.ReadSBML(bytes.NewReader(body))
}

// Recon2Archive downloads the Recon2 MATLAB workspace, extracts it from
// its zip wrapper, and stores it in the document store under
// recon2/Recon2.v04.mat. MATLAB workspaces have no decoder here, so the
// file is archived as-is for downstream tools. Returns the stored
// document metadata.
func (c *Client) Recon2Archive(ctx context.Context, store blob.Store) (blob.Info, error) {
	body, err := c.fetch(ctx, Recon2FileName+"_.zip")
	if err != nil {
		return blob.Info{}, err
	}
	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return blob.Info{}, fmt.Errorf("open recon2 zip: %w", err)
	}
	file, err := archive.Open(Recon2FileName)
	if err != nil {
		return blob.Info{}, fmt.Errorf("recon2 zip missing %s: %w", Recon2FileName, err)
	}
	defer file.Close()
	return store.Put(ctx, "recon2/"+Recon2FileName, file, blob.PutOptions{
		ContentType: "application/octet-stream",
		Metadata:    map[string]string{"source": "vmh"},
	})
}
