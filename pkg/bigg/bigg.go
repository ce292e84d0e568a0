// Package bigg fetches metabolites, reactions, and whole models from the
// BiGG Models HTTP API and assembles them into model containers.
package bigg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the public BiGG Models data API endpoint.
const DefaultBaseURL = "http://bigg.ucsd.edu/api/v2/"

// defaultPauseEvery is how many detail requests go out between pauses.
// The BiGG API asks clients to rate-limit themselves.
const defaultPauseEvery = 250

const pauseDuration = time.Second

var logger = log.New(os.Stderr)

// SetLogger replaces the package logger. Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.New(os.Stderr)
		return
	}
	logger = l
}

// StatusError reports a BiGG API request that returned a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("bigg request %s failed with status %d", e.URL, e.StatusCode)
}

// Config controls a Client. The zero value selects the public endpoint,
// the default rate limit, and http.DefaultClient.
type Config struct {
	// BaseURL of the data API, ending in a slash.
	BaseURL string
	// PauseEvery inserts a pause after this many detail requests during
	// bulk downloads.
	PauseEvery int
	// Sleep is called to pause between request batches. Overridable for
	// tests.
	Sleep func(time.Duration)
	// HTTPClient used for requests.
	HTTPClient *http.Client
}

// Client issues requests against the BiGG Models data API.
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
	if cfg.PauseEvery <= 0 {
		cfg.PauseEvery = defaultPauseEvery
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{cfg: cfg}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
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

// DatabaseVersion identifies the BiGG database release serving the API.
type DatabaseVersion struct {
	APIVersion  string `json:"api_version"`
	Version     string `json:"bigg_models_version"`
	LastUpdated string `json:"last_updated"`
}

// DatabaseVersion fetches the current BiGG database release information.
func (c *Client) DatabaseVersion(ctx context.Context) (DatabaseVersion, error) {
	var version DatabaseVersion
	err := c.getJSON(ctx, "database_version", &version)
	return version, err
}

// ModelSummary is one entry from the BiGG model catalog.
type ModelSummary struct {
	BiggID          string `json:"bigg_id"`
	Organism        string `json:"organism"`
	MetaboliteCount int    `json:"metabolite_count"`
	ReactionCount   int    `json:"reaction_count"`
	GeneCount       int    `json:"gene_count"`
}

type modelPage struct {
	Results []ModelSummary `json:"results"`
}

// Models lists the models available from the BiGG website.
func (c *Client) Models(ctx context.Context) ([]ModelSummary, error) {
	var page modelPage
	if err := c.getJSON(ctx, "models", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

type summaryPage struct {
	Results []struct {
		BiggID string `json:"bigg_id"`
	} `json:"results"`
}

// CompartmentRef names a compartment a universal metabolite appears in and
// one model that places it there.
type CompartmentRef struct {
	BiggID      string `json:"bigg_id"`
	ModelBiggID string `json:"model_bigg_id"`
}

// MetaboliteDetail is the BiGG record for a metabolite. Universal records
// carry formulae, charges, and compartment references; model-scoped records
// carry the compartment name.
type MetaboliteDetail struct {
	BiggID               string           `json:"bigg_id"`
	Name                 string           `json:"name"`
	Formulae             []string         `json:"formulae"`
	Charges              []int            `json:"charges"`
	CompartmentsInModels []CompartmentRef `json:"compartments_in_models"`
	CompartmentName      string           `json:"compartment_name"`
	DatabaseLinks        map[string]any   `json:"database_links"`
}

// Metabolite fetches a metabolite record. An empty modelID selects the
// universal namespace.
func (c *Client) Metabolite(ctx context.Context, biggID, modelID string) (*MetaboliteDetail, error) {
	path := "universal/metabolites/" + biggID
	if modelID != "" {
		path = "models/" + modelID + "/metabolites/" + biggID
	}
	var detail MetaboliteDetail
	if err := c.getJSON(ctx, path, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ReactionMetabolite is one participant of a BiGG reaction.
type ReactionMetabolite struct {
	BiggID            string  `json:"bigg_id"`
	CompartmentBiggID string  `json:"compartment_bigg_id"`
	Stoichiometry     float64 `json:"stoichiometry"`
}

// ReactionResult carries the flux bounds a model assigns a reaction.
type ReactionResult struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ReactionDetail is the BiGG record for a reaction.
type ReactionDetail struct {
	BiggID         string               `json:"bigg_id"`
	Name           string               `json:"name"`
	ReactionString string               `json:"reaction_string"`
	Metabolites    []ReactionMetabolite `json:"metabolites"`
	Results        []ReactionResult     `json:"results"`
	DatabaseLinks  map[string]any       `json:"database_links"`
}

// Reaction fetches a reaction record. An empty modelID selects the
// universal namespace.
func (c *Client) Reaction(ctx context.Context, biggID, modelID string) (*ReactionDetail, error) {
	path := "universal/reactions/" + biggID
	if modelID != "" {
		path = "models/" + modelID + "/reactions/" + biggID
	}
	var detail ReactionDetail
	if err := c.getJSON(ctx, path, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
