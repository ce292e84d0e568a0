package kegg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the KEGG REST endpoint.
const DefaultBaseURL = "https://rest.kegg.jp/"

// defaultPageSize matches the web service limit on ids per get operation.
const defaultPageSize = 10

// Config carries the explicit web client configuration. The zero value
// selects the public KEGG endpoint with the documented page size.
type Config struct {
	// BaseURL of the REST service, DefaultBaseURL when empty.
	BaseURL string
	// PageSize is the number of ids fetched per get request, 10 when zero.
	PageSize int
	// HTTPClient used for requests; http.DefaultClient-like client with a
	// timeout when nil.
	HTTPClient *http.Client
}

// Client talks to the KEGG REST web service. Requests are sequential; a
// single non-2xx response aborts the whole operation with a QueryError.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

// NewClient returns a client using cfg with defaults applied.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: cfg.BaseURL, pageSize: cfg.PageSize, http: cfg.HTTPClient}
}

// request performs one GET and returns the response lines, dropping the
// empty line after the trailing newline.
func (c *Client) request(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, QueryError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(body), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// List returns the entry identifiers and associated definitions for a
// database, one tab-delimited line per entry.
func (c *Client) List(ctx context.Context, database string) ([]string, error) {
	return c.request(ctx, c.baseURL+"list/"+database)
}

// Get fetches records for the given ids from a database, paging by the
// configured page size. option selects an output form such as "aaseq" and
// may be empty.
func (c *Client) Get(ctx context.Context, database string, ids []string, option string) ([]string, error) {
	var result []string
	for start := 0; start < len(ids); start += c.pageSize {
		end := start + c.pageSize
		if end > len(ids) {
			end = len(ids)
		}
		query := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			query = append(query, database+":"+id)
		}
		url := fmt.Sprintf("%sget/%s", c.baseURL, strings.Join(query, "+"))
		if option != "" {
			url += "/" + option
		}
		lines, err := c.request(ctx, url)
		if err != nil {
			return nil, err
		}
		result = append(result, lines...)
	}
	return result, nil
}

// Reactions fetches reaction records by R number and parses them.
func (c *Client) Reactions(ctx context.Context, ids []string) ([]*Reaction, error) {
	lines, err := c.Get(ctx, "rn", ids, "")
	if err != nil {
		return nil, err
	}
	records := SplitRecords(lines)
	reactions := make([]*Reaction, 0, len(records))
	for _, record := range records {
		reaction, err := ParseReaction(record)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}
	return reactions, nil
}

// Enzymes fetches enzyme records by EC number and parses them.
func (c *Client) Enzymes(ctx context.Context, ids []string) ([]*Enzyme, error) {
	lines, err := c.Get(ctx, "ec", ids, "")
	if err != nil {
		return nil, err
	}
	records := SplitRecords(lines)
	enzymes := make([]*Enzyme, 0, len(records))
	for _, record := range records {
		enzyme, err := ParseEnzyme(record)
		if err != nil {
			return nil, err
		}
		enzymes = append(enzymes, enzyme)
	}
	return enzymes, nil
}

// AminoAcidSequences fetches FASTA amino acid sequences for genes of an
// organism identified by its code.
func (c *Client) AminoAcidSequences(ctx context.Context, code string, genes []string) ([]string, error) {
	return c.Get(ctx, code, genes, "aaseq")
}

// DNASequences fetches FASTA DNA sequences for genes of an organism
// identified by its code.
func (c *Client) DNASequences(ctx context.Context, code string, genes []string) ([]string, error) {
	return c.Get(ctx, code, genes, "ntseq")
}
