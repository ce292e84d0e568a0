package bigg

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"metabocore/pkg/model"
)

// reversibleEntity marks a reversible reaction in BiGG reaction strings.
const reversibleEntity = "&#8652"

// UniversalModel downloads every universal metabolite and reaction and
// assembles them into a single model. This issues one detail request per
// record and pauses periodically per the configured rate limit, so a full
// build takes a while against the live API.
func (c *Client) UniversalModel(ctx context.Context) (*model.Model, error) {
	version, err := c.DatabaseVersion(ctx)
	if err != nil {
		return nil, err
	}
	universal := model.New("bigg_universal", "BiGG universal model "+version.Version)
	universal.Note("last_updated", version.LastUpdated)

	if err := c.addUniversalMetabolites(ctx, universal); err != nil {
		return nil, err
	}
	if err := c.addUniversalReactions(ctx, universal); err != nil {
		return nil, err
	}
	return universal, nil
}

func (c *Client) addUniversalMetabolites(ctx context.Context, universal *model.Model) error {
	var page summaryPage
	if err := c.getJSON(ctx, "universal/metabolites", &page); err != nil {
		return err
	}

	// Compartment names are only reported on model-scoped metabolite
	// records, so resolve each compartment id once through a model that
	// uses it.
	compartmentNames := make(map[string]string)

	for index, summary := range page.Results {
		if index%c.cfg.PauseEvery == 0 {
			c.cfg.Sleep(pauseDuration)
		}
		detail, err := c.Metabolite(ctx, summary.BiggID, "")
		if err != nil {
			return err
		}

		compartments := make(map[string]bool)
		for _, ref := range detail.CompartmentsInModels {
			if _, ok := compartmentNames[ref.BiggID]; !ok {
				scoped, err := c.Metabolite(ctx, detail.BiggID+"_"+ref.BiggID, ref.ModelBiggID)
				if err != nil {
					return err
				}
				compartmentNames[ref.BiggID] = scoped.CompartmentName
			}
			compartments[ref.BiggID] = true
		}

		for compartment := range compartments {
			metabolite := &model.Metabolite{
				MID:         detail.BiggID + "_" + compartment,
				Name:        detail.Name,
				Compartment: compartment,
			}
			if len(detail.Formulae) > 0 {
				metabolite.Formula = detail.Formulae[0]
			}
			if len(detail.Charges) > 0 {
				charge := detail.Charges[0]
				metabolite.Charge = &charge
			}
			if len(detail.Formulae) > 1 {
				metabolite.Note("formulae", detail.Formulae)
			}
			if len(detail.Charges) > 1 {
				metabolite.Note("charges", detail.Charges)
			}
			if len(detail.DatabaseLinks) > 0 {
				metabolite.Note("aliases", detail.DatabaseLinks)
			}
			if err := universal.AddMetabolites(metabolite); err != nil {
				return err
			}
			universal.SetCompartment(compartment, compartmentNames[compartment])
		}
	}
	return nil
}

func (c *Client) addUniversalReactions(ctx context.Context, universal *model.Model) error {
	var page summaryPage
	if err := c.getJSON(ctx, "universal/reactions", &page); err != nil {
		return err
	}
	for index, summary := range page.Results {
		if index%c.cfg.PauseEvery == 0 {
			c.cfg.Sleep(pauseDuration)
		}
		detail, err := c.Reaction(ctx, summary.BiggID, "")
		if err != nil {
			return err
		}
		if err := addReaction(detail, universal); err != nil {
			return err
		}
	}
	return nil
}

func addReaction(detail *ReactionDetail, universal *model.Model) error {
	reaction := &model.Reaction{RID: detail.BiggID, Name: detail.Name}
	if len(detail.DatabaseLinks) > 0 {
		reaction.Note("aliases", detail.DatabaseLinks)
	}
	for _, participant := range detail.Metabolites {
		id := participant.BiggID + "_" + participant.CompartmentBiggID
		if !universal.Metabolites.HasID(id) {
			return fmt.Errorf("reaction %s references unknown metabolite %s", detail.BiggID, id)
		}
		reaction.AddMetabolite(id, participant.Stoichiometry)
	}
	switch {
	case len(detail.Results) > 0:
		reaction.SetBounds(detail.Results[0].LowerBound, detail.Results[0].UpperBound)
	case strings.Contains(detail.ReactionString, reversibleEntity):
		reaction.SetBounds(-1000, 1000)
	default:
		logger.Warn("unknown direction symbol in reaction string",
			"reaction", detail.BiggID, "equation", detail.ReactionString)
		reaction.SetBounds(0, 1000)
	}
	return universal.AddReactions(reaction)
}

// Model downloads a BiGG model in its JSON representation and decodes it,
// annotating the result with catalog details. Mismatches between the
// decoded model and the catalog counts are logged as warnings.
func (c *Client) Model(ctx context.Context, biggID string) (*model.Model, error) {
	var details struct {
		Organism        string `json:"organism"`
		GenomeName      string `json:"genome_name"`
		ReferenceType   string `json:"reference_type"`
		ReferenceID     string `json:"reference_id"`
		ReactionCount   int    `json:"reaction_count"`
		MetaboliteCount int    `json:"metabolite_count"`
		GeneCount       int    `json:"gene_count"`
	}
	if err := c.getJSON(ctx, "models/"+biggID, &details); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "models/"+biggID+"/download")
	if err != nil {
		return nil, err
	}
	m, err := model.ReadJSON(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	m.Name = details.Organism
	m.Note("genome_name", details.GenomeName)
	m.Note("reference_type", details.ReferenceType)
	m.Note("reference_id", details.ReferenceID)

	if m.Reactions.Len() != details.ReactionCount {
		logger.Warn("reaction count does not match model details",
			"model", biggID, "decoded", m.Reactions.Len(), "details", details.ReactionCount)
	}
	if m.Metabolites.Len() != details.MetaboliteCount {
		logger.Warn("metabolite count does not match model details",
			"model", biggID, "decoded", m.Metabolites.Len(), "details", details.MetaboliteCount)
	}
	if m.Genes.Len() != details.GeneCount {
		logger.Warn("gene count does not match model details",
			"model", biggID, "decoded", m.Genes.Len(), "details", details.GeneCount)
	}
	return m, nil
}
