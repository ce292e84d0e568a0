// Package metanetx builds a universal model from the MetaNetX reference
// property files. MetaNetX distributes its namespace as tab-delimited
// files, one row per metabolite or reaction.
package metanetx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"metabocore/pkg/model"
)

// DefaultBaseURL is the MetaNetX reference file download endpoint.
const DefaultBaseURL = "http://www.metanetx.org/cgi-bin/mnxget/mnxref/"

// Participant term in a reaction equation: coefficient then metabolite id.
var equationRe = regexp.MustCompile(`(\d*\.\d+|\d+) (MNXM\d+)`)

// Column counts of the chem_prop.tsv and reac_prop.tsv files.
const (
	chemPropFields = 8
	reacPropFields = 6
)

var logger = log.New(os.Stderr)

// SetLogger replaces the package logger. Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.New(os.Stderr)
		return
	}
	logger = l
}

// StatusError reports a MetaNetX download that returned a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("metanetx request %s failed with status %d", e.URL, e.StatusCode)
}

// Config controls a Client. The zero value selects the public endpoint
// and http.DefaultClient.
type Config struct {
	// BaseURL of the reference file directory, ending in a slash.
	BaseURL string
	// Verbose logs a warning for every skipped or unparseable row.
	Verbose bool
	// HTTPClient used for downloads.
	HTTPClient *http.Client
}

// Client downloads MetaNetX reference files.
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

func (c *Client) fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	url := c.cfg.BaseURL + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// UniversalModel downloads chem_prop.tsv and reac_prop.tsv and assembles
// them into a single model holding every MetaNetX metabolite and every
// reaction whose equation parses.
func (c *Client) UniversalModel(ctx context.Context) (*model.Model, error) {
	universal := model.New("metanetx_universal", "MetaNetX universal model")

	body, err := c.fetch(ctx, "chem_prop.tsv")
	if err != nil {
		return nil, err
	}
	err = c.addMetabolites(body, universal)
	body.Close()
	if err != nil {
		return nil, err
	}

	body, err = c.fetch(ctx, "reac_prop.tsv")
	if err != nil {
		return nil, err
	}
	err = c.addReactions(body, universal)
	body.Close()
	if err != nil {
		return nil, err
	}
	return universal, nil
}

// addMetabolites parses chem_prop.tsv rows into metabolites. Columns are
// id, description, formula, charge, mass, InChI, SMILES, and source.
func (c *Client) addMetabolites(r io.Reader, universal *model.Model) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		row := scanner.Text()
		if row == "" || row[0] == '#' {
			continue
		}
		fields := strings.Split(row, "\t")
		if len(fields) != chemPropFields {
			if c.cfg.Verbose {
				logger.Warn("skipping metabolite row with missing fields", "line", line)
			}
			continue
		}
		metabolite := &model.Metabolite{
			MID:     fields[0],
			Name:    fields[1],
			Formula: fields[2],
		}
		if charge, err := strconv.Atoi(fields[3]); err == nil {
			metabolite.Charge = &charge
		}
		metabolite.Note("mass", fields[4])
		metabolite.Note("InChI", fields[5])
		metabolite.Note("SMILES", fields[6])
		metabolite.Note("source", fields[7])
		if err := universal.AddMetabolites(metabolite); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// addReactions parses reac_prop.tsv rows into reactions. Columns are id,
// equation, description, balance, EC number, and source. Rows whose
// equation does not parse are skipped.
func (c *Client) addReactions(r io.Reader, universal *model.Model) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		row := scanner.Text()
		if row == "" || row[0] == '#' {
			continue
		}
		fields := strings.Split(row, "\t")
		if len(fields) != reacPropFields {
			if c.cfg.Verbose {
				logger.Warn("skipping reaction row with missing fields", "line", line)
			}
			continue
		}
		stoichiometry, ok := parseEquation(fields[1], universal)
		if !ok {
			if c.cfg.Verbose {
				logger.Warn("could not parse reaction equation",
					"reaction", fields[0], "line", line, "equation", fields[1])
			}
			continue
		}
		reaction := &model.Reaction{
			RID:           fields[0],
			Name:          fields[2],
			Stoichiometry: stoichiometry,
		}
		reaction.SetBounds(-1000, 1000)
		if fields[4] != "" {
			reaction.Note("EC_number", fields[4])
		}
		if len(fields[5]) > 1 {
			parts := strings.Split(fields[5], ":")
			if len(parts) == 2 {
				reaction.Note("aliases", map[string]string{parts[0]: parts[1]})
			} else if c.cfg.Verbose {
				logger.Warn("could not parse reaction source",
					"reaction", fields[0], "source", fields[5])
			}
		}
		if err := universal.AddReactions(reaction); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseEquation converts a MetaNetX equation string to a stoichiometry
// map. Reactants and products are separated by " = " and participants by
// " + ", each with an explicit coefficient:
//
//	2 MNXM2 + 2 MNXM947 = 1 MNXM4 + 2 MNXM470
//
// Every participant must already exist in the model.
func parseEquation(equation string, universal *model.Model) (map[string]float64, bool) {
	sides := strings.Split(equation, " = ")
	if len(sides) != 2 {
		return nil, false
	}
	stoichiometry := make(map[string]float64)
	for side, sign := range []float64{-1, 1} {
		for _, term := range strings.Split(sides[side], " + ") {
			match := equationRe.FindStringSubmatch(term)
			if match == nil {
				return nil, false
			}
			if !universal.Metabolites.HasID(match[2]) {
				return nil, false
			}
			coefficient, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				return nil, false
			}
			stoichiometry[match[2]] = sign * coefficient
		}
	}
	return stoichiometry, true
}
