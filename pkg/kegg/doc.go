// Package kegg implements the KEGG flat-file record format: parsing and
// serialization of enzyme, reaction, and organism records, ordered
// uniquely-keyed record databases with flat-file load/store, a REST client
// for the KEGG web service, and the OTU-representative reconciliation that
// maps an external representative-organism list onto a loaded organism
// database by fuzzy name matching.
//
// Records are delimited by a terminator line "///". Fields are identified
// by a tag occupying the first 12 character columns of a line; continuation
// lines carry a blank 12-column prefix and belong to the most recently
// named field. Organism records are the exception: one tab-delimited line
// per organism, no terminator.
package kegg
