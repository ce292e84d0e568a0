// Package model provides the in-memory metabolic model containers consumed
// by the web service fetchers: models, metabolites, reactions, genes, an
// ordered uniquely-keyed collection, and JSON / SBML codecs. The surface is
// deliberately narrow: create an empty model, add metabolites and
// reactions, query by predicate, get and set flux bounds. Optimization and
// solving are out of scope.
package model
